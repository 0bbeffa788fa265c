package command

import (
	"github.com/dockrun/dockrun/internal/dockerpath"
	"github.com/dockrun/dockrun/internal/mount"
)

// Value is one argument value fed to the Builder. The concrete types are
// Scalar, HostPath, Resolved and List; nothing else implements it.
type Value interface {
	isValue()
}

// Scalar is a plain value appended to the command line as-is.
type Scalar string

func (Scalar) isValue() {}

// HostPath is a host filesystem path that still needs resolution. Policy
// overrides the builder's default mount policy when Override is set.
type HostPath struct {
	Path     string
	Policy   dockerpath.Policy
	Override bool
}

func (HostPath) isValue() {}

// Resolved is a path that already went through dockerpath.Resolve. The
// builder reuses its container path and spec instead of resolving again,
// so one logical argument never produces two mounts.
type Resolved struct {
	Path *dockerpath.Path
}

func (Resolved) isValue() {}

// List nests values; the builder flattens it depth-first, resolving each
// leaf independently.
type List []Value

func (List) isValue() {}

// ResolvedSpec is a convenience accessor for tests and callers that want
// the mount spec of a resolved value.
func (r Resolved) ResolvedSpec() mount.Spec { return r.Path.Spec() }
