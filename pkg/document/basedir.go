package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// BaseDir anchors a configured asset directory. Absolute paths are returned
// cleaned; relative paths (and "") are joined to the directory holding the
// running executable, so the result does not depend on the launch directory.
func BaseDir(configured string) (string, error) {
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured), nil
	}
	dir, err := ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configured), nil
}

// ExecutableDir returns the directory of the running executable with symlinks
// resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
