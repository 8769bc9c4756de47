// Package testutil provides fixture helpers shared by the bagit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pwinckles/bagr/util/logger"
)

func init() {
	// Keep library log chatter out of test output.
	logger.DiscardLogger()
}

// MakeSourceTree writes the given relative-path/content pairs under dir,
// creating intermediate directories as needed.
func MakeSourceTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Cannot create directory for '%s': %v", relPath, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Cannot write file '%s': %v", relPath, err)
		}
	}
}

// ReadFile returns the contents of the file as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Cannot read file '%s': %v", path, err)
	}
	return string(data)
}

// FileExists returns true if the path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
