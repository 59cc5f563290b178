package errors

import (
	"strings"
	"unicode"
)

// ValidateKey validates a JSON/TOML key name used to locate children, counts
// or payloads in nested input documents.
//
// The validation rules are intentionally conservative:
//   - No control characters
//   - No dots (nested key paths are not supported)
//   - Maximum length of 128 characters
//
// An empty key is valid: for the data key it means "store the whole object".
func ValidateKey(name string) error {
	if len(name) > 128 {
		return New(ErrCodeInvalidKey, "key too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	if strings.Contains(name, ".") {
		return New(ErrCodeInvalidKey, "key %q must not contain dots", name)
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
