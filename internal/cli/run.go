package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dockrun/dockrun/internal/command"
	"github.com/dockrun/dockrun/internal/config"
	"github.com/dockrun/dockrun/internal/container"
	"github.com/dockrun/dockrun/internal/dockerpath"
	"github.com/dockrun/dockrun/internal/ui"
)

func runContainer(cmd *cobra.Command, args []string) error {
	imageName := cfg.Image.Name
	if imageName == "" {
		return fmt.Errorf("no image configured; use --image or set image.name in the config")
	}

	defaults, err := defaultPolicy(cfg.Mounts.Mode)
	if err != nil {
		return err
	}

	prefix, _ := cmd.Flags().GetStringArray("prefix")
	if len(prefix) == 0 {
		prefix = cfg.Command.Prefix
	}

	builder := command.NewBuilder(prefix, defaults)

	// The script is mounted read-only via its parent directory, so
	// sibling files (modules, data) next to it stay reachable.
	if script, _ := cmd.Flags().GetString("script"); script != "" {
		pol := defaults
		pol.BindParent = dockerpath.ParentAlways
		pol.ReadOnly = true
		if err := builder.Add("", command.HostPath{Path: script, Policy: pol, Override: true}); err != nil {
			return err
		}
	}

	if err := addTrailingArgs(cmd, builder, args); err != nil {
		return err
	}

	if err := addExplicitMounts(cmd, builder); err != nil {
		return err
	}

	if extra, _ := cmd.Flags().GetStringArray("extra-arg"); len(extra) > 0 {
		builder.Passthrough(extra...)
	}

	tokens, mounts := builder.Build()

	env, err := buildEnvironment(cmd)
	if err != nil {
		return err
	}

	keep, _ := cmd.Flags().GetBool("keep")
	noPull, _ := cmd.Flags().GetBool("no-pull")
	workDir, _ := cmd.Flags().GetString("workdir")
	ports, _ := cmd.Flags().GetStringArray("publish")
	if len(ports) == 0 {
		ports = cfg.Container.Ports
	}

	opts := container.RunOptions{
		Image:       imageName,
		Command:     tokens,
		Mounts:      mounts,
		Env:         env,
		WorkDir:     workDir,
		User:        cfg.Container.User,
		Network:     cfg.Container.Network,
		MemoryLimit: cfg.Container.MemoryLimit,
		GPUs:        cfg.Container.GPUs,
		Ports:       ports,
		AutoRemove:  cfg.Container.AutoRemove && !keep,
		Pull: container.PullPolicy{
			TryPull:       cfg.Image.Pull && !noPull,
			TryLogin:      cfg.Image.Login,
			Authenticator: promptAuthenticator,
		},
	}

	runner, err := container.NewRunner()
	if err != nil {
		return fmt.Errorf("failed to create container runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	// The caller's scripts see the container's exit code, not ours.
	exitCode = result.ExitCode
	return nil
}

// addTrailingArgs rebuilds the wrapped command line. Flag tokens pass
// through in place, tokens naming existing host paths are mounted and
// substituted, tokens listed under --create are treated as output paths
// that do not exist yet, and everything else stays a plain value.
func addTrailingArgs(cmd *cobra.Command, builder *command.Builder, args []string) error {
	autoMount := true
	if noAuto, _ := cmd.Flags().GetBool("no-auto-mount"); noAuto {
		autoMount = false
	}
	createList, _ := cmd.Flags().GetStringArray("create")
	create := make(map[string]bool, len(createList))
	for _, c := range createList {
		create[c] = true
	}

	for _, tok := range args {
		switch {
		case strings.HasPrefix(tok, "-"):
			builder.Flag(tok)
		case create[tok]:
			if err := builder.Add("", command.HostPath{Path: tok}); err != nil {
				return err
			}
		case autoMount && pathExists(tok):
			if err := builder.Add("", command.HostPath{Path: tok}); err != nil {
				return err
			}
		default:
			if err := builder.Add("", command.Scalar(tok)); err != nil {
				return err
			}
		}
	}
	return nil
}

// addExplicitMounts registers --mount/--mount-ro flags and the config's
// default mounts. These keep their host paths inside the container so the
// wrapped program finds them at familiar locations.
func addExplicitMounts(cmd *cobra.Command, builder *command.Builder) error {
	hostPol := dockerpath.Policy{Mode: dockerpath.ModeHost, BindParent: dockerpath.ParentNever}

	addAll := func(paths []string, readOnly bool) error {
		for _, p := range paths {
			expanded, err := dockerpath.ExpandUser(p)
			if err != nil {
				return fmt.Errorf("invalid mount path %q: %w", p, err)
			}
			pol := hostPol
			pol.ReadOnly = readOnly
			resolved, err := dockerpath.Resolve(expanded, pol)
			if err != nil {
				return err
			}
			builder.Mounts().Add(resolved.Spec())
		}
		return nil
	}

	rw, _ := cmd.Flags().GetStringArray("mount")
	if err := addAll(rw, false); err != nil {
		return err
	}
	ro, _ := cmd.Flags().GetStringArray("mount-ro")
	if err := addAll(ro, true); err != nil {
		return err
	}

	for _, dm := range cfg.Mounts.Defaults {
		expanded, err := dockerpath.ExpandUser(dm.Path)
		if err != nil {
			ui.Warn("skipping invalid default mount %q: %v", dm.Path, err)
			continue
		}
		pol := hostPol
		pol.ReadOnly = dm.ReadOnly
		resolved, err := dockerpath.Resolve(expanded, pol)
		if err != nil {
			ui.Warn("skipping default mount %q: %v", dm.Path, err)
			continue
		}
		builder.Mounts().Add(resolved.Spec())
	}
	return nil
}

func buildEnvironment(cmd *cobra.Command) (map[string]string, error) {
	env := make(map[string]string)

	for _, key := range cfg.Environment.Passthrough {
		if val, ok := os.LookupEnv(key); ok {
			env[key] = val
		}
	}
	for key, val := range cfg.Environment.Custom {
		env[key] = val
	}

	flagEnv, _ := cmd.Flags().GetStringArray("env")
	for _, kv := range flagEnv {
		key, val, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid environment variable %q (expected KEY=VALUE)", kv)
		}
		env[key] = val
	}

	// Sentinel so the wrapped program can tell it is already inside the
	// container and skip re-execution.
	if cfg.Environment.Sentinel != "" {
		env[cfg.Environment.Sentinel] = "1"
	}
	return env, nil
}

func defaultPolicy(mode string) (dockerpath.Policy, error) {
	switch mode {
	case config.MountModeRandom, "":
		return dockerpath.Policy{Mode: dockerpath.ModeRandom}, nil
	case config.MountModeHost:
		return dockerpath.Policy{Mode: dockerpath.ModeHost}, nil
	}
	return dockerpath.Policy{}, fmt.Errorf("unknown mount mode %q (allowed: %s, %s)", mode, config.MountModeRandom, config.MountModeHost)
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
