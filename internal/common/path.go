package common

import "path/filepath"

// ResolvePath returns p unchanged when it is absolute, otherwise p joined to base.
// An empty base resolves against the process working directory.
func ResolvePath(base, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	if base == "" {
		return filepath.Abs(p)
	}

	return filepath.Join(base, p), nil
}
