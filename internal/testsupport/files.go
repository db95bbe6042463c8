package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with parent directories, failing the test on error.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SeedMedia fabricates named media files under root and returns their paths.
func SeedMedia(t testing.TB, root string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(root, name)
		WriteFile(t, path, []byte("media:"+name))
		paths = append(paths, path)
	}
	return paths
}
