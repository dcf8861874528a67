// Package sanitize normalizes client-supplied filenames before they are
// embedded in storage keys and public URLs.
package sanitize

import (
	"path/filepath"
	"strings"
	"unicode"

	"gatehouse/internal/constants"
)

// unsafeKeyChars are characters forbidden in storage keys: filesystem-illegal
// on common platforms, or problematic once the key appears inside a URL.
const unsafeKeyChars = `<>:"|?*#%&{}$'` + "`"

// Filename sanitizes a raw client filename into a form safe to embed in a
// storage key: path components stripped, control and unsafe characters
// replaced, whitespace collapsed. Returns an empty string when nothing
// usable remains; the caller decides the fallback.
func Filename(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ReplaceAll(raw, "\x00", "")
	if s == "" {
		return ""
	}

	// Normalize backslashes so filepath.Base strips Windows-style paths
	// on every platform.
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	if s == "." || s == ".." {
		return ""
	}

	// Leading dots would produce hidden files on disk backends.
	s = strings.TrimLeft(s, ".")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			b.WriteString(constants.FilenameReplacementChar)
		case unicode.IsSpace(r):
			b.WriteString(constants.FilenameReplacementChar)
		case strings.ContainsRune(unsafeKeyChars, r):
			b.WriteString(constants.FilenameReplacementChar)
		default:
			b.WriteRune(r)
		}
	}
	s = b.String()
	s = strings.Trim(s, constants.FilenameReplacementChar)

	if len(s) > constants.MaxOriginNameLength {
		s = s[:constants.MaxOriginNameLength]
	}
	return s
}

// Extension sanitizes a file extension: lowercased, dots stripped,
// alphanumerics only. Returns an empty string when nothing remains.
func Extension(raw string) string {
	if raw == "" {
		return ""
	}

	raw = strings.ToLower(raw)
	raw = strings.TrimLeft(raw, ".")

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	result := b.String()
	if len(result) > constants.MaxExtensionLength {
		result = result[:constants.MaxExtensionLength]
	}
	return result
}

// IsPathTraversal checks whether a string contains path traversal
// indicators: directory separators, parent references, null bytes, and
// common percent-encoded bypass variants.
func IsPathTraversal(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, "\x00") {
		return true
	}
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	if strings.Contains(s, "..") {
		return true
	}

	lower := strings.ToLower(s)
	encodedPatterns := []string{
		"%2f",    // /
		"%5c",    // \
		"%2e",    // .
		"%00",    // null
		"%c0%af", // UTF-8 overlong encoding of /
	}
	for _, pattern := range encodedPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
