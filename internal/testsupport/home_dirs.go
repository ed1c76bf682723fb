package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EnsureHomeDirs creates the default config, data and state directories under homeDir.
func EnsureHomeDirs(homeDir string) error {
	for _, dir := range [][]string{
		{".config", "todolist"},
		{".local", "share", "todolist"},
		{".local", "state", "todolist"},
	} {
		path := filepath.Join(append([]string{homeDir}, dir...)...)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil
}

// SetupTestHome creates a temp home directory, ensures the default dirs, and sets HOME.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := EnsureHomeDirs(homeDir); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", homeDir)
	return homeDir
}
