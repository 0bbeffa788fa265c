// Package container launches one container per invocation and relays its
// lifecycle back to the caller: signals forwarded in, logs streamed out,
// exit status returned as data.
package container

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/chainguard-dev/clog"
	containerTypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"

	"github.com/dockrun/dockrun/internal/errdefs"
)

// Runner owns a Docker client and the container resource for the duration
// of one run.
type Runner struct {
	cli *client.Client
}

// NewRunner creates a runner connected to the local Docker daemon.
func NewRunner() (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	// Verify connection
	if _, err := cli.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to Docker: %w", err)
	}

	return &Runner{cli: cli}, nil
}

// Close closes the Docker client.
func (r *Runner) Close() error {
	return r.cli.Close()
}

// Run executes opts.Command inside a container of opts.Image and returns
// its exit status. Interrupt and termination signals received while the
// container runs are forwarded to it; the container is removed on every
// exit path when auto-removal is on.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	log := clog.FromContext(ctx)

	if err := r.EnsureImage(ctx, opts.Image, opts.Pull); err != nil {
		return RunResult{}, err
	}

	cfg, hostCfg, err := buildConfigs(opts)
	if err != nil {
		return RunResult{}, err
	}

	log.Debug("creating container", "image", opts.Image, "command", opts.Command, "mounts", opts.Mounts.Strings())
	resp, err := r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		return RunResult{}, &errdefs.LaunchError{Image: opts.Image, Err: err}
	}
	containerID := resp.ID

	if opts.AutoRemove {
		defer func() {
			// Background context: removal must happen even when ctx is
			// already cancelled.
			if err := r.cli.ContainerRemove(context.Background(), containerID, containerTypes.RemoveOptions{Force: true}); err != nil {
				log.Warn("failed to remove container", "id", containerID, "err", err)
			}
		}()
	}

	relay := newSignalRelay(relaySignals, func(sig os.Signal) {
		log.Debug("forwarding signal to container", "signal", sig)
		if err := r.cli.ContainerKill(context.Background(), containerID, signalName(sig)); err != nil {
			log.Warn("failed to forward signal", "signal", sig, "err", err)
		}
	})
	defer relay.Close()

	if err := r.cli.ContainerStart(ctx, containerID, containerTypes.StartOptions{}); err != nil {
		return RunResult{}, &errdefs.LaunchError{Image: opts.Image, Err: err}
	}

	var rec *lineRecorder
	outw, errw := opts.Stdout, opts.Stderr
	if outw == nil {
		outw = os.Stdout
	}
	if errw == nil {
		errw = os.Stderr
	}
	if opts.CaptureLogs {
		rec = &lineRecorder{}
		outw, errw = rec, rec
	}

	logsDone := make(chan error, 1)
	go func() {
		logs, err := r.cli.ContainerLogs(ctx, containerID, containerTypes.LogsOptions{
			ShowStdout: true,
			ShowStderr: true,
			Follow:     true,
		})
		if err != nil {
			logsDone <- err
			return
		}
		defer logs.Close()
		_, err = stdcopy.StdCopy(outw, errw, logs)
		logsDone <- err
	}()

	statusCh, errCh := r.cli.ContainerWait(ctx, containerID, containerTypes.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		<-logsDone
		return RunResult{}, fmt.Errorf("error waiting for container: %w", err)
	case status := <-statusCh:
		if err := <-logsDone; err != nil && ctx.Err() == nil {
			log.Warn("log stream ended early", "err", err)
		}
		result := RunResult{ExitCode: int(status.StatusCode)}
		if rec != nil {
			result.Logs = rec.Lines()
		}
		log.Debug("container exited", "id", containerID, "code", result.ExitCode)
		return result, nil
	case <-ctx.Done():
		timeout := 5
		_ = r.cli.ContainerStop(context.Background(), containerID, containerTypes.StopOptions{Timeout: &timeout})
		<-logsDone
		return RunResult{}, ctx.Err()
	}
}

// buildConfigs translates RunOptions into the engine-facing configuration
// pair. All validation errors here are configuration errors and abort
// before anything is created.
func buildConfigs(opts RunOptions) (*containerTypes.Config, *containerTypes.HostConfig, error) {
	var env []string
	for k, v := range opts.Env {
		env = append(env, k+"="+v)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		workDir = cwd
	}

	user := opts.User
	if user == "auto" {
		user = fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
	}

	var memoryLimit int64
	if opts.MemoryLimit != "" {
		limit, err := units.RAMInBytes(opts.MemoryLimit)
		if err != nil {
			return nil, nil, errdefs.Configf("invalid memory limit %q: %v", opts.MemoryLimit, err)
		}
		memoryLimit = limit
	}

	deviceRequests, err := ParseGPURequest(opts.GPUs)
	if err != nil {
		return nil, nil, err
	}

	cfg := &containerTypes.Config{
		Image:      opts.Image,
		Cmd:        strslice.StrSlice(opts.Command),
		Env:        env,
		WorkingDir: workDir,
		User:       user,
	}

	hostCfg := &containerTypes.HostConfig{
		Mounts:      opts.Mounts.DockerMounts(),
		NetworkMode: containerTypes.NetworkMode(opts.Network),
		Resources: containerTypes.Resources{
			Memory:         memoryLimit,
			DeviceRequests: deviceRequests,
		},
	}

	if len(opts.Ports) > 0 {
		exposed, bindings, err := nat.ParsePortSpecs(opts.Ports)
		if err != nil {
			return nil, nil, errdefs.Configf("invalid port spec: %v", err)
		}
		cfg.ExposedPorts = exposed
		hostCfg.PortBindings = bindings
	}

	return cfg, hostCfg, nil
}

// lineRecorder buffers container output as whole lines for capture mode.
type lineRecorder struct {
	mu    sync.Mutex
	buf   []byte
	lines []string
}

func (l *lineRecorder) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		l.lines = append(l.lines, string(bytes.TrimSuffix(l.buf[:i], []byte("\r"))))
		l.buf = l.buf[i+1:]
	}
	return len(p), nil
}

// Lines returns everything recorded so far, flushing any unterminated
// trailing line.
func (l *lineRecorder) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buf) > 0 {
		l.lines = append(l.lines, string(bytes.TrimSuffix(l.buf, []byte("\r"))))
		l.buf = nil
	}
	return l.lines
}
