package process

import (
	"os"
	"path/filepath"
	"strings"
)

// LookPath resolves the external tool named file (tar, bzip2, gpg, ...) to
// an absolute path, searching $PATH unless file already contains a slash.
func LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(file); err == nil {
			return file, nil
		} else {
			return "", &LookPathError{Name: file, Err: err}
		}
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			if !filepath.IsAbs(candidate) && isExecutable(candidate) {
				return candidate, &LookPathError{Name: file, Err: ErrDot}
			}
			return candidate, nil
		}
	}
	return "", &LookPathError{Name: file, Err: ErrNotFound}
}

func findExecutable(file string) error {
	fi, err := os.Stat(file)
	if err != nil {
		return err
	}
	if fi.Mode().IsDir() {
		return os.ErrPermission
	}
	if fi.Mode()&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
