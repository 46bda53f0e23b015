package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateLayerIndex checks that i addresses one of n layers. A model without
// a stack still has layer 0.
func ValidateLayerIndex(i, n int) error {
	n = max(n, 1)
	if i < 0 || i >= n {
		return New(ErrCodeInvalidLayer, "layer %d out of range (model has %d)", i, n)
	}
	return nil
}

// packageIDRegex matches the identifiers produced by the package store.
var packageIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidatePackageID validates a layout package ID taken from a URL or the
// command line. It rejects anything that could escape a path or a query.
//
// Rules:
//   - No empty IDs
//   - Maximum length of 64 characters
//   - No control characters
//   - Letters, digits, '-' and '_' only
func ValidatePackageID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "package id cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "package id too long (max 64 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "package id contains invalid control characters")
		}
	}

	if !packageIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid package id: %q", id)
	}

	return nil
}

// ValidatePath validates a file path given to the CLI or read from config.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a connection URL from config. Only the listed
// schemes are accepted.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of: %s", strings.Join(schemes, ", "))
}
