// Package mount holds bind-mount declarations and the deduplicating set
// that collects them during command building.
package mount

import (
	"fmt"

	"github.com/docker/docker/api/types/mount"
)

// Spec describes one bind mount: a host source exposed at a container
// target, optionally read-only. Specs are value types; construct once and
// never mutate.
type Spec struct {
	Target   string // absolute path inside the container
	Source   string // absolute path on the host
	ReadOnly bool
}

// SameMount reports whether two specs refer to the same (target, source)
// pair, ignoring the access mode.
func (s Spec) SameMount(other Spec) bool {
	return s.Target == other.Target && s.Source == other.Source
}

// mirrored returns the spec with the access mode flipped.
func (s Spec) mirrored() Spec {
	s.ReadOnly = !s.ReadOnly
	return s
}

// String renders the declaration in the familiar "source:target:ro|rw"
// form. Informational only; the engine receives DockerMount instead.
func (s Spec) String() string {
	mode := "rw"
	if s.ReadOnly {
		mode = "ro"
	}
	return fmt.Sprintf("%s:%s:%s", s.Source, s.Target, mode)
}

// DockerMount materializes the spec into the record the Docker API expects.
func (s Spec) DockerMount() mount.Mount {
	return mount.Mount{
		Type:     mount.TypeBind,
		Source:   s.Source,
		Target:   s.Target,
		ReadOnly: s.ReadOnly,
	}
}
