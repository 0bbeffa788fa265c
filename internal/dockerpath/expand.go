package dockerpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandUser expands a leading ~ to the user's home directory and cleans
// the path. Relative paths are anchored at the current directory so they
// resolve the same way inside and outside the container.
func ExpandUser(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}

	if p == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}

	p = filepath.Clean(p)
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		p = filepath.Join(cwd, p)
	}
	return p, nil
}
