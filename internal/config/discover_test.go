package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverRoot_ExplicitWins(t *testing.T) {
	root := t.TempDir()

	got, err := DiscoverRoot(root)
	if err != nil {
		t.Fatalf("DiscoverRoot failed: %v", err)
	}
	if got != root {
		t.Errorf("DiscoverRoot = %q, want %q", got, root)
	}
}

func TestDiscoverRoot_WalksUpToMemoryDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, MemoryDir), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	t.Chdir(nested)

	got, err := DiscoverRoot("")
	if err != nil {
		t.Fatalf("DiscoverRoot failed: %v", err)
	}
	if resolve(t, got) != resolve(t, root) {
		t.Errorf("DiscoverRoot = %q, want %q", got, root)
	}
}

func TestDiscoverRoot_NoMatchSettlesOnCwd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	got, err := DiscoverRoot("")
	if err != nil {
		t.Fatalf("DiscoverRoot failed: %v", err)
	}
	if resolve(t, got) != resolve(t, dir) {
		t.Errorf("DiscoverRoot = %q, want %q", got, dir)
	}
}

// resolve normalizes symlinked temp dirs so path comparisons hold on
// platforms where TempDir sits behind a symlink.
func resolve(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("EvalSymlinks(%s): %v", path, err)
	}
	return resolved
}
