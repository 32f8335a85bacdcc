package schema

import (
	"path/filepath"
	"strings"
)

// NormalizeBase appends a separator to the host's directory and cleans the
// result. The returned path always ends in a separator.
func NormalizeBase(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidBase
	}
	sep := string(filepath.Separator)
	cleaned := filepath.Clean(path + sep)
	if !strings.HasSuffix(cleaned, sep) {
		cleaned += sep
	}
	return cleaned, nil
}
