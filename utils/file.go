package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// RelativePath strips the leading path segment from a local path,
// yielding the value stored in the search index's relative_path column.
// The staging pipeline flattens uploads, so "files/x.pdf" is indexed as
// "x.pdf". A mismatch here makes retrieval return empty result sets.
func RelativePath(localPath string) string {
	p := filepath.ToSlash(localPath)
	if idx := strings.Index(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// SanitizeFilename replaces characters that are unsafe in filenames.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// SaveToFile writes the reader's content to destDir/filename, creating
// the directory if needed. Returns the destination path.
func SaveToFile(src io.Reader, destDir, filename string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	destPath := filepath.Join(destDir, filename)
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return destPath, nil
}
