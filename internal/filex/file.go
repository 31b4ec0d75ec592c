// Package filex holds filesystem helpers for the local asset directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (and parents) if missing and returns its absolute
// path. Relative paths are resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// IsHidden reports whether name is a dotfile such as .DS_Store or .gitkeep.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsPlainName reports whether name is a bare file name that cannot escape
// its directory: not empty, not "." or "..", no separators. Dots inside a
// name ("my..photo.jpg") are fine.
func IsPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
