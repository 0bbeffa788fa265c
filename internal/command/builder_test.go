package command

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockrun/dockrun/internal/dockerpath"
	"github.com/dockrun/dockrun/internal/errdefs"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuilderPreservesDeclarationOrder(t *testing.T) {
	b := NewBuilder([]string{"python", "script.py"}, dockerpath.Policy{Mode: dockerpath.ModeRandom})

	b.Flag("--verbose")
	if err := b.Add("--count", Scalar("3")); err != nil {
		t.Fatal(err)
	}
	if err := b.Add("", Scalar("positional")); err != nil {
		t.Fatal(err)
	}

	tokens, _ := b.Build()
	want := []string{"python", "script.py", "--verbose", "--count", "3", "positional"}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens %v, want %v", len(tokens), tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestBuilderPassthroughComesLast(t *testing.T) {
	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})

	// Passthrough tokens recorded before declared arguments still land
	// at the end.
	b.Passthrough("--unknown", "value")
	if err := b.Add("--declared", Scalar("v")); err != nil {
		t.Fatal(err)
	}

	tokens, _ := b.Build()
	want := []string{"--declared", "v", "--unknown", "value"}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", tokens, want)
		}
	}
}

func TestBuilderResolvesHostPaths(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.txt")

	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	if err := b.Add("--input", HostPath{Path: input}); err != nil {
		t.Fatal(err)
	}

	tokens, mounts := b.Build()
	if len(tokens) != 2 || tokens[0] != "--input" {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[1] == input {
		t.Error("host path was not substituted with a container path")
	}
	if mounts.Len() != 1 {
		t.Errorf("expected 1 mount, got %d", mounts.Len())
	}
}

func TestBuilderFlattensNestedLists(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt")
	c := writeFile(t, dir, "c.txt")

	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	err := b.Add("--files", List{
		HostPath{Path: a},
		List{Scalar("literal"), HostPath{Path: c}},
	})
	if err != nil {
		t.Fatal(err)
	}

	tokens, mounts := b.Build()
	// flag + three leaves, in traversal order
	if len(tokens) != 4 {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[2] != "literal" {
		t.Errorf("nested scalar out of order: %v", tokens)
	}
	if mounts.Len() != 2 {
		t.Errorf("expected one mount per path leaf, got %d", mounts.Len())
	}
}

func TestBuilderDuplicateLeafRegistersOneMount(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt")

	// The same leaf path twice in one list: two tokens, one mount.
	resolved, err := dockerpath.Resolve(a, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	if err := b.Add("--files", List{Resolved{Path: resolved}, Resolved{Path: resolved}}); err != nil {
		t.Fatal(err)
	}

	tokens, mounts := b.Build()
	if len(tokens) != 3 {
		t.Fatalf("tokens = %v", tokens)
	}
	if mounts.Len() != 1 {
		t.Errorf("expected 1 mount for the duplicated leaf, got %d", mounts.Len())
	}
}

func TestBuilderResolvedIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt")

	resolved, err := dockerpath.Resolve(a, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	if err := b.Add("--in", Resolved{Path: resolved}); err != nil {
		t.Fatal(err)
	}
	if err := b.Add("--again", Resolved{Path: resolved}); err != nil {
		t.Fatal(err)
	}

	tokens, mounts := b.Build()
	if mounts.Len() != 1 {
		t.Errorf("re-adding a resolved path registered a second mount (%d total)", mounts.Len())
	}
	if tokens[1] != tokens[3] {
		t.Errorf("resolved path produced different container paths: %v", tokens)
	}
}

func TestBuilderPerArgumentPolicyOverride(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt")

	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})
	err := b.Add("--config", HostPath{
		Path:     a,
		Policy:   dockerpath.Policy{Mode: dockerpath.ModeExplicit, MountPath: "/etc/app.conf", ReadOnly: true},
		Override: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	tokens, mounts := b.Build()
	if tokens[1] != "/etc/app.conf" {
		t.Errorf("override policy ignored: tokens = %v", tokens)
	}
	specs := mounts.Specs()
	if len(specs) != 1 || !specs[0].ReadOnly {
		t.Errorf("unexpected mounts: %v", specs)
	}
}

func TestBuilderAddChoice(t *testing.T) {
	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeRandom})

	if err := b.AddChoice("--mode", "fast", []string{"fast", "slow"}); err != nil {
		t.Fatalf("valid choice rejected: %v", err)
	}

	err := b.AddChoice("--mode", "bogus", []string{"fast", "slow"})
	var argErr *errdefs.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
	if argErr.Flag != "--mode" || argErr.Value != "bogus" {
		t.Errorf("error does not identify the offending flag/value: %+v", argErr)
	}

	// The invalid choice must not have appended anything.
	tokens, _ := b.Build()
	if len(tokens) != 2 {
		t.Errorf("tokens after rejected choice = %v", tokens)
	}
}

func TestBuilderPropagatesResolutionErrors(t *testing.T) {
	b := NewBuilder(nil, dockerpath.Policy{Mode: dockerpath.ModeExplicit, MountPath: "relative/target"})

	err := b.Add("--in", HostPath{Path: "/tmp/whatever"})
	var cfgErr *errdefs.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError from resolution, got %v", err)
	}
}
