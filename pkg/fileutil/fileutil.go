// Package fileutil provides case-insensitive file lookup across search directories.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no search location contains the file.
var ErrNotFound = errors.New("file not found")

// FindFileCaseInsensitive searches for a file with the given name in the specified directory.
// The search is case-insensitive, so scripts written on Windows keep working on
// case-sensitive file systems.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "Cat.PNG")
//	// Will find "cat.png", "CAT.PNG", "Cat.png", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
}

// Resolve finds name in the given search directories and returns the actual path.
//
// Lookup order:
//   - name itself when it is absolute or exists relative to the working directory
//   - each dir joined with name, as written
//   - each dir joined with name, matching the last element case-insensitively
//
// Empty directories are skipped.
func Resolve(name string, dirs ...string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	if isFile(name) {
		return name, nil
	}
	if filepath.IsAbs(name) {
		if p, err := FindFileCaseInsensitive(filepath.Dir(name), filepath.Base(name)); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, nil
		}
		if p, err := FindFileCaseInsensitive(filepath.Dir(candidate), filepath.Base(candidate)); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, name, strings.Join(dirs, ", "))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
