package pkg

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileUtils provides file name helpers
type FileUtils struct{}

// Files is the shared FileUtils instance
var Files = FileUtils{}

// SanitizeFilename strips path separators and control characters from a
// user-supplied name. Returns "" when nothing usable remains.
func (FileUtils) SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			continue
		case r < 0x20:
			continue
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}

// Extension returns the lowercase extension of a file name, dot included
func (FileUtils) Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// FormatSize renders a byte count in human-readable form
func (FileUtils) FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// StringUtils provides string helpers
type StringUtils struct{}

// Strings is the shared StringUtils instance
var Strings = StringUtils{}

// IsEmpty checks if a string is empty or contains only whitespace
func (StringUtils) IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// EqualFold reports whether two names match case-insensitively
func (StringUtils) EqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
