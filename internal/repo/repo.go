package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

const toolDirName = ".tagnav"

// FindRoot finds the workspace root directory.
// It walks up from the current directory looking for .git or an existing
// .tagnav directory. If neither is found, the current directory is used.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	return FindRootFrom(cwd), nil
}

// FindRootFrom is FindRoot starting at dir.
func FindRootFrom(dir string) string {
	start := dir
	for {
		for _, marker := range []string{".git", toolDirName} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// ToolDir returns the path to the .tagnav directory for a given root.
func ToolDir(root string) string {
	return filepath.Join(root, toolDirName)
}

// EnsureToolDir creates the .tagnav directory if needed and returns its path.
func EnsureToolDir(root string) (string, error) {
	dir := ToolDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}
