package mount

import (
	"errors"

	"github.com/docker/docker/api/types/mount"
)

// ErrNotFound is returned by Remove when neither the spec nor its
// access-mode mirror is present.
var ErrNotFound = errors.New("mount not found in set")

// Set is an ordered collection of Specs with at most one entry per
// (target, source) pair. Inserting a read-write spec over an existing
// read-only entry upgrades it in place; inserting a read-only spec over a
// read-write entry is dropped, so a mount is never stricter than any
// caller asked for. The engine rejects duplicate binds for the same pair,
// hence the dedup.
//
// A Set is only mutated during a single command-build pass and is not safe
// for concurrent use.
type Set struct {
	specs []Spec
}

// NewSet returns a Set seeded with the given specs, applying the usual
// merge rules in order.
func NewSet(specs ...Spec) *Set {
	s := &Set{}
	for _, spec := range specs {
		s.Add(spec)
	}
	return s
}

// Add inserts spec, merging with any existing entry for the same
// (target, source) pair. Position of an upgraded entry is preserved.
func (s *Set) Add(spec Spec) {
	for i, existing := range s.specs {
		if !existing.SameMount(spec) {
			continue
		}
		if existing.ReadOnly && !spec.ReadOnly {
			s.specs[i] = spec
		}
		return
	}
	s.specs = append(s.specs, spec)
}

// Contains reports whether an exact match for spec is present.
func (s *Set) Contains(spec Spec) bool {
	for _, existing := range s.specs {
		if existing == spec {
			return true
		}
	}
	return false
}

// Remove deletes an exact match for spec, or failing that its access-mode
// mirror. Returns ErrNotFound when neither is present.
func (s *Set) Remove(spec Spec) error {
	if s.Discard(spec) {
		return nil
	}
	return ErrNotFound
}

// Discard is Remove with no-op semantics: it reports whether anything was
// removed. Used when a pre-registered default mount may already have been
// superseded.
func (s *Set) Discard(spec Spec) bool {
	for _, candidate := range []Spec{spec, spec.mirrored()} {
		for i, existing := range s.specs {
			if existing == candidate {
				s.specs = append(s.specs[:i], s.specs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Len returns the number of entries.
func (s *Set) Len() int { return len(s.specs) }

// Specs returns the entries in insertion order. The slice is a copy.
func (s *Set) Specs() []Spec {
	out := make([]Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// DockerMounts materializes the set for the Docker API, in insertion order.
func (s *Set) DockerMounts() []mount.Mount {
	out := make([]mount.Mount, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec.DockerMount())
	}
	return out
}

// Strings renders every entry in "source:target:ro|rw" form, for logging.
func (s *Set) Strings() []string {
	out := make([]string, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec.String())
	}
	return out
}
