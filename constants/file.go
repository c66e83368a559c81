package constants

import "strings"

// MaxFileSize is the upload ceiling for a single specification sheet (10 MB).
const MaxFileSize int64 = 10 * 1024 * 1024

// PDFMagic is the header every accepted document must start with.
const PDFMagic = "%PDF"

// AllowedExtensions holds the file extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without a leading dot) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
