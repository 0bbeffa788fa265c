// Package command assembles the argument vector to execute inside the
// container, substituting resolved container paths for host paths and
// collecting the bind mounts they require.
package command

import (
	"fmt"

	"github.com/dockrun/dockrun/internal/dockerpath"
	"github.com/dockrun/dockrun/internal/errdefs"
	"github.com/dockrun/dockrun/internal/mount"
)

// Builder accumulates command tokens and mounts over one build pass. Its
// lifetime is exactly one invocation: create, feed arguments in
// declaration order, then Build.
type Builder struct {
	tokens      []string
	passthrough []string
	mounts      *mount.Set
	defaults    dockerpath.Policy
}

// NewBuilder returns a Builder seeded with the run-command prefix (for
// example ["python"]) and the default mount policy applied to host paths
// that carry no per-argument override.
func NewBuilder(prefix []string, defaults dockerpath.Policy) *Builder {
	b := &Builder{
		mounts:   mount.NewSet(),
		defaults: defaults,
	}
	b.tokens = append(b.tokens, prefix...)
	return b
}

// Flag appends a bare option string, e.g. a boolean flag that carries no
// value.
func (b *Builder) Flag(flag string) {
	b.tokens = append(b.tokens, flag)
}

// Add appends flag (when non-empty) followed by the given values in order.
// Nested lists are flattened depth-first; each host-path leaf is resolved
// and its mount registered.
func (b *Builder) Add(flag string, values ...Value) error {
	if flag != "" {
		b.tokens = append(b.tokens, flag)
	}
	for _, v := range values {
		if err := b.resolve(flag, v); err != nil {
			return err
		}
	}
	return nil
}

// AddChoice appends flag followed by value, after checking value against
// the allowed choices.
func (b *Builder) AddChoice(flag, value string, allowed []string) error {
	for _, choice := range allowed {
		if value == choice {
			return b.Add(flag, Scalar(value))
		}
	}
	return &errdefs.ArgumentError{
		Flag:  flag,
		Value: value,
		Msg:   fmt.Sprintf("invalid choice (choose from %v)", allowed),
	}
}

// Passthrough records tokens the declaration surface did not claim. They
// are appended verbatim after all declared tokens, regardless of when they
// were seen.
func (b *Builder) Passthrough(tokens ...string) {
	b.passthrough = append(b.passthrough, tokens...)
}

// Mounts exposes the accumulating set, e.g. to pre-register a script mount
// or discard a superseded default.
func (b *Builder) Mounts() *mount.Set { return b.mounts }

// Build returns the final token list and the collected mounts.
// Passthrough tokens come strictly last.
func (b *Builder) Build() ([]string, *mount.Set) {
	tokens := make([]string, 0, len(b.tokens)+len(b.passthrough))
	tokens = append(tokens, b.tokens...)
	tokens = append(tokens, b.passthrough...)
	return tokens, b.mounts
}

func (b *Builder) resolve(flag string, v Value) error {
	switch val := v.(type) {
	case Scalar:
		b.tokens = append(b.tokens, string(val))
	case HostPath:
		pol := b.defaults
		if val.Override {
			pol = val.Policy
		}
		resolved, err := dockerpath.Resolve(val.Path, pol)
		if err != nil {
			return err
		}
		b.mounts.Add(resolved.Spec())
		b.tokens = append(b.tokens, resolved.ContainerPath())
	case Resolved:
		// Already resolved once; reuse. The set drops the duplicate
		// spec if the same path object shows up twice.
		b.mounts.Add(val.Path.Spec())
		b.tokens = append(b.tokens, val.Path.ContainerPath())
	case List:
		for _, nested := range val {
			if err := b.resolve(flag, nested); err != nil {
				return err
			}
		}
	default:
		return &errdefs.ArgumentError{
			Flag:  flag,
			Value: fmt.Sprintf("%v", v),
			Msg:   fmt.Sprintf("unsupported argument type %T", v),
		}
	}
	return nil
}
