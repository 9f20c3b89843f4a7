package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiscoverRoot resolves the project root handed to the engine. A non-empty
// explicit path wins; otherwise the search walks up from the working
// directory looking for a memory/ directory, settling on the working
// directory itself when nothing matches. The engine validates existence, so
// this only picks a candidate.
func DiscoverRoot(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if info, err := os.Stat(filepath.Join(current, MemoryDir)); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
