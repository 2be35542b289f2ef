package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// ReplaceExt swaps the extension of a filename, inserting an optional
// suffix before the new extension (e.g. "clip.mp4" -> "clip_thumb.jpg").
func ReplaceExt(name, suffix, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + suffix + ext
}
