// Package security confines file access to a configured directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator resolves names against a root directory and rejects any
// result that escapes it, including through symlinks.
type PathValidator struct {
	root string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	// The directory may not exist yet (output directories are created on demand)
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve joins name onto the root and returns the absolute path, or an
// error when the result lies outside the root.
func (v *PathValidator) Resolve(name string) (string, error) {
	name = strings.ReplaceAll(name, "\x00", "")
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	path = filepath.Clean(path)

	if !v.Contains(path) {
		return "", fmt.Errorf("path is outside configured directory: %s", name)
	}

	return path, nil
}

// Contains reports whether path, after symlink resolution, lies within the root.
func (v *PathValidator) Contains(path string) bool {
	clean := filepath.Clean(path)
	if !within(clean, v.root) {
		return false
	}

	realRoot := v.root
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil {
		realRoot = resolved
	}

	info, err := os.Lstat(clean)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return true
	}

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		return false
	}
	return within(resolved, realRoot) || within(resolved, v.root)
}

// EnsureDir creates the root directory if it does not exist
func (v *PathValidator) EnsureDir() error {
	info, err := os.Stat(v.root)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", v.root)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	return os.MkdirAll(v.root, 0o755)
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
