// Package dockerpath translates host filesystem paths into container paths
// backed by bind mounts.
//
// A host path arriving as a command argument is resolved under a Policy:
// the container target is either a mirror of the host path, a randomly
// namespaced path under /temp, or an explicit caller-supplied path; the
// mount binds either the path itself or its parent directory. When the
// policy leaves the parent choice to Auto, a path that does not exist on
// the host binds its parent so a not-yet-created output file is writable
// once the parent directory is mounted.
package dockerpath

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dockrun/dockrun/internal/errdefs"
	"github.com/dockrun/dockrun/internal/mount"
)

// MountRoot is the container namespace used by ModeRandom targets.
const MountRoot = "/temp"

// Mode selects how the container target path is derived.
type Mode int

const (
	// ModeRandom synthesizes a collision-free target under MountRoot.
	ModeRandom Mode = iota
	// ModeHost mirrors the host's absolute path inside the container.
	// On platforms with drive prefixes the prefix is stripped, so two
	// distinct drives can collide on the same container path. Known
	// limitation; not detected here.
	ModeHost
	// ModeExplicit uses the target given in Policy.MountPath.
	ModeExplicit
)

// BindParent controls whether the mount binds the path or its parent.
type BindParent int

const (
	// ParentAuto binds the parent exactly when the host path does not
	// exist at resolution time.
	ParentAuto BindParent = iota
	// ParentAlways binds the parent directory unconditionally.
	ParentAlways
	// ParentNever binds the path itself unconditionally.
	ParentNever
)

// Policy configures how one host-path argument becomes a container path
// and mount.
type Policy struct {
	Mode       Mode
	MountPath  string // explicit container target, required for ModeExplicit
	BindParent BindParent
	ReadOnly   bool
}

// Path is a resolved host path: the container-side path to substitute into
// the command line plus the mount spec backing it. Write-once; create via
// Resolve.
type Path struct {
	host      string
	container string
	spec      mount.Spec
}

// Resolve maps host under the given policy. The returned Path carries both
// the container path string and the mount spec to register.
func Resolve(host string, pol Policy) (*Path, error) {
	if host == "" {
		return nil, errdefs.Configf("empty host path")
	}

	bindParent, err := resolveBindParent(host, pol.BindParent)
	if err != nil {
		return nil, err
	}

	target, err := containerTarget(host, pol, bindParent)
	if err != nil {
		return nil, err
	}
	if !path.IsAbs(target) {
		return nil, errdefs.Configf("container path %q is not absolute", target)
	}

	// The bound host path is the argument itself, or its parent when the
	// argument does not exist yet.
	boundHost := host
	mountTarget := target
	if bindParent {
		boundHost = filepath.Dir(host)
		mountTarget = path.Dir(target)
	}
	source, err := resolveHost(boundHost)
	if err != nil {
		return nil, err
	}

	return &Path{
		host:      host,
		container: target,
		spec: mount.Spec{
			Target:   mountTarget,
			Source:   source,
			ReadOnly: pol.ReadOnly,
		},
	}, nil
}

// Host returns the path as given by the caller.
func (p *Path) Host() string { return p.host }

// ContainerPath returns the absolute path the argument resolves to inside
// the container.
func (p *Path) ContainerPath() string { return p.container }

// Spec returns the bind mount backing the container path.
func (p *Path) Spec() mount.Spec { return p.spec }

// MountString renders the backing mount as "source:target:ro|rw".
func (p *Path) MountString() string { return p.spec.String() }

func resolveBindParent(host string, bp BindParent) (bool, error) {
	switch bp {
	case ParentAlways:
		return true, nil
	case ParentNever:
		return false, nil
	case ParentAuto:
		_, err := os.Stat(host)
		if err == nil {
			return false, nil
		}
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return false, errdefs.Configf("unknown bind-parent mode %d", bp)
}

func containerTarget(host string, pol Policy, bindParent bool) (string, error) {
	base := filepath.Base(host)
	switch pol.Mode {
	case ModeExplicit:
		if pol.MountPath == "" {
			return "", errdefs.Configf("explicit mount mode requires a mount path")
		}
		if !path.IsAbs(pol.MountPath) {
			return "", errdefs.Configf("mount path %q is not absolute", pol.MountPath)
		}
		if bindParent {
			return path.Join(pol.MountPath, base), nil
		}
		return pol.MountPath, nil
	case ModeHost:
		abs, err := filepath.Abs(host)
		if err != nil {
			return "", err
		}
		// Strip any drive prefix; the container filesystem has no such
		// concept.
		abs = strings.TrimPrefix(abs, filepath.VolumeName(abs))
		return filepath.ToSlash(abs), nil
	case ModeRandom:
		id := uuid.NewString()
		if bindParent {
			return path.Join(MountRoot, id, base), nil
		}
		return path.Join(MountRoot, id+filepath.Ext(host)), nil
	}
	return "", errdefs.Configf("unknown mount mode %d", pol.Mode)
}

// resolveHost returns the absolute, symlink-free form of a host path. A
// path that does not exist yet keeps its cleaned absolute form.
func resolveHost(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}
