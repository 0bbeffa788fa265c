package mount

import (
	"testing"

	dockermount "github.com/docker/docker/api/types/mount"
)

func TestSpecString(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{"read-write", Spec{Target: "/data", Source: "/home/user/data"}, "/home/user/data:/data:rw"},
		{"read-only", Spec{Target: "/data", Source: "/home/user/data", ReadOnly: true}, "/home/user/data:/data:ro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpecDockerMount(t *testing.T) {
	spec := Spec{Target: "/data", Source: "/src", ReadOnly: true}
	m := spec.DockerMount()

	if m.Type != dockermount.TypeBind {
		t.Errorf("expected bind mount, got %q", m.Type)
	}
	if m.Source != "/src" || m.Target != "/data" || !m.ReadOnly {
		t.Errorf("unexpected mount: %+v", m)
	}
}

func TestSetAddDeduplicates(t *testing.T) {
	s := NewSet()
	spec := Spec{Target: "/data", Source: "/src"}

	s.Add(spec)
	s.Add(spec)

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry after duplicate add, got %d", s.Len())
	}
}

func TestSetAddUpgradesReadOnlyInPlace(t *testing.T) {
	s := NewSet()
	s.Add(Spec{Target: "/a", Source: "/host/a", ReadOnly: true})
	s.Add(Spec{Target: "/b", Source: "/host/b"})

	// Read-write request over an existing read-only entry upgrades it
	// without moving it.
	s.Add(Spec{Target: "/a", Source: "/host/a"})

	specs := s.Specs()
	if len(specs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(specs))
	}
	if specs[0].Target != "/a" {
		t.Errorf("upgraded entry moved: first entry is %+v", specs[0])
	}
	if specs[0].ReadOnly {
		t.Error("entry was not upgraded to read-write")
	}
}

func TestSetAddNeverDowngrades(t *testing.T) {
	s := NewSet()
	s.Add(Spec{Target: "/a", Source: "/host/a"})
	s.Add(Spec{Target: "/a", Source: "/host/a", ReadOnly: true})

	specs := s.Specs()
	if len(specs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(specs))
	}
	if specs[0].ReadOnly {
		t.Error("read-write entry was downgraded by a read-only add")
	}
}

func TestSetNeverHoldsDuplicatePairs(t *testing.T) {
	s := NewSet()
	adds := []Spec{
		{Target: "/a", Source: "/host/a", ReadOnly: true},
		{Target: "/a", Source: "/host/a"},
		{Target: "/a", Source: "/host/a", ReadOnly: true},
		{Target: "/a", Source: "/other"},
		{Target: "/b", Source: "/host/a"},
	}
	for _, spec := range adds {
		s.Add(spec)
	}

	seen := make(map[[2]string]bool)
	for _, spec := range s.Specs() {
		key := [2]string{spec.Target, spec.Source}
		if seen[key] {
			t.Errorf("duplicate (target, source) pair: %v", key)
		}
		seen[key] = true
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 distinct pairs, got %d", s.Len())
	}
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	s := NewSet(
		Spec{Target: "/c", Source: "/3"},
		Spec{Target: "/a", Source: "/1"},
		Spec{Target: "/b", Source: "/2"},
	)

	want := []string{"/c", "/a", "/b"}
	for i, spec := range s.Specs() {
		if spec.Target != want[i] {
			t.Errorf("entry %d: got target %q, want %q", i, spec.Target, want[i])
		}
	}
}

func TestSetRemove(t *testing.T) {
	spec := Spec{Target: "/a", Source: "/host/a", ReadOnly: true}

	t.Run("exact match", func(t *testing.T) {
		s := NewSet(spec)
		if err := s.Remove(spec); err != nil {
			t.Fatalf("Remove() = %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("expected empty set, got %d entries", s.Len())
		}
	})

	t.Run("mirrored match", func(t *testing.T) {
		s := NewSet(spec)
		mirrored := spec
		mirrored.ReadOnly = false
		if err := s.Remove(mirrored); err != nil {
			t.Fatalf("Remove() of mirrored spec = %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("expected empty set, got %d entries", s.Len())
		}
	})

	t.Run("absent is an error", func(t *testing.T) {
		s := NewSet()
		if err := s.Remove(spec); err != ErrNotFound {
			t.Errorf("Remove() = %v, want ErrNotFound", err)
		}
	})

	t.Run("discard is a no-op when absent", func(t *testing.T) {
		s := NewSet()
		if s.Discard(spec) {
			t.Error("Discard() reported removal from an empty set")
		}
	})
}

func TestSetContains(t *testing.T) {
	spec := Spec{Target: "/a", Source: "/host/a"}
	s := NewSet(spec)

	if !s.Contains(spec) {
		t.Error("Contains() = false for a present spec")
	}
	other := spec
	other.ReadOnly = true
	if s.Contains(other) {
		t.Error("Contains() = true for a spec with a different access mode")
	}
}

func TestSetDockerMountsOrder(t *testing.T) {
	s := NewSet(
		Spec{Target: "/a", Source: "/1", ReadOnly: true},
		Spec{Target: "/b", Source: "/2"},
	)

	mounts := s.DockerMounts()
	if len(mounts) != 2 {
		t.Fatalf("expected 2 mounts, got %d", len(mounts))
	}
	if mounts[0].Target != "/a" || !mounts[0].ReadOnly {
		t.Errorf("unexpected first mount: %+v", mounts[0])
	}
	if mounts[1].Target != "/b" || mounts[1].ReadOnly {
		t.Errorf("unexpected second mount: %+v", mounts[1])
	}
	for _, m := range mounts {
		if m.Type != dockermount.TypeBind {
			t.Errorf("mount %q has type %q, want bind", m.Target, m.Type)
		}
	}
}
