package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ResolveUniquePath returns proposed if nothing exists there. Otherwise it
// appends "_2", "_3", ... to the file stem and returns the first candidate
// that does not exist. It never writes to the filesystem.
func ResolveUniquePath(proposed string) string {
	return resolveUniquePath(proposed, pathExists)
}

func resolveUniquePath(proposed string, exists func(string) bool) string {
	if !exists(proposed) {
		return proposed
	}

	dir := filepath.Dir(proposed)
	ext := filepath.Ext(proposed)
	stem := strings.TrimSuffix(filepath.Base(proposed), ext)

	for counter := 2; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// pathExists treats an entry it may not inspect as occupied, so it is never
// overwritten. Other errors (a parent that is not a directory) report free
// and surface when the caller writes.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || errors.Is(err, fs.ErrPermission)
}
