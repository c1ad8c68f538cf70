package util

import (
	"errors"
	"strings"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips directories from an uploaded file name and rejects
// traversal patterns and empty names.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}
	s = strings.ReplaceAll(s, "\\", "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
