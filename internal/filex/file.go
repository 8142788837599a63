// Package filex contains small filesystem helpers shared by the client:
// data directory resolution and atomic full-file rewrites.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir resolves (and creates if needed) the per-user data
// directory for the application, e.g. ~/.alarmify. Falls back to the
// working directory when the home directory cannot be determined.
func EnsureDataDir(appDir string) (string, error) {
	base, err := os.UserHomeDir()
	if err != nil {
		base, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
	}

	dir := filepath.Join(base, appDir)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// WriteFileAtomic writes data to path via a temporary file and rename, so a
// crash mid-write never leaves a truncated file behind.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
