package container

import (
	"io"

	"github.com/docker/docker/api/types/registry"

	"github.com/dockrun/dockrun/internal/mount"
)

// Authenticator supplies registry credentials when an unauthenticated pull
// fails. It is an I/O boundary: the interactive prompt lives in the CLI,
// not here.
type Authenticator func(registryHost string) (registry.AuthConfig, error)

// PullPolicy controls the image acquisition fallback chain: local lookup,
// then pull, then authenticate-and-retry.
type PullPolicy struct {
	TryPull       bool
	TryLogin      bool
	Authenticator Authenticator
}

// RunOptions configures one container execution.
type RunOptions struct {
	Image   string
	Command []string   // full argument vector to execute, in order
	Mounts  *mount.Set // read-only by the time it reaches the runner

	Env         map[string]string
	WorkDir     string // default: caller's current directory
	User        string // "auto" maps to uid:gid of the caller
	Network     string
	MemoryLimit string   // e.g. "4g", parsed with go-units
	GPUs        string   // "all" or "device=<id>[,<id>...]"
	Ports       []string // docker-style port specs, e.g. "8080:80"

	AutoRemove bool
	Pull       PullPolicy

	// CaptureLogs buffers container output into RunResult.Logs instead of
	// writing it to Stdout/Stderr. The two modes are mutually exclusive.
	CaptureLogs bool
	Stdout      io.Writer // default os.Stdout
	Stderr      io.Writer // default os.Stderr
}

// RunResult reports the outcome of a completed container run. A non-zero
// ExitCode is data, not an error; the caller decides what it means.
type RunResult struct {
	ExitCode int
	Logs     []string // populated only in capture mode
}
