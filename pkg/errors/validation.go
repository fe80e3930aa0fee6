package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// coordinatePartRegex matches a Maven groupId, artifactId, classifier or
// extension segment.
var coordinatePartRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateCoordinatePart validates one segment of an artifact coordinate.
// field names the segment in the error message ("group", "name", ...).
//
// Segments end up in repository URL paths and cache keys, so the rules are
// conservative:
//   - No empty segments
//   - Only letters, digits, '.', '-' and '_'
//   - No ".." sequences
//   - Maximum length of 256 characters
func ValidateCoordinatePart(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}
	if len(value) > 256 {
		return New(ErrCodeInvalidInput, "%s too long (max 256 characters)", field)
	}
	if strings.Contains(value, "..") {
		return New(ErrCodeInvalidInput, "%s contains path traversal sequence: %q", field, value)
	}
	if !coordinatePartRegex.MatchString(value) {
		return New(ErrCodeInvalidInput, "%s contains invalid characters: %q", field, value)
	}
	return nil
}

// ValidateVersion validates a version or version range expression.
func ValidateVersion(v string) error {
	if strings.TrimSpace(v) == "" {
		return New(ErrCodeInvalidInput, "version cannot be empty")
	}
	for _, r := range v {
		if unicode.IsControl(r) || r == '/' || r == '\\' {
			return New(ErrCodeInvalidInput, "version contains invalid characters: %q", v)
		}
	}
	return nil
}

// repositoryIDRegex matches repository identifiers such as "central".
var repositoryIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

// ValidateRepositoryID validates a repository identifier.
func ValidateRepositoryID(id string) error {
	if !repositoryIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid repository id: %q", id)
	}
	return nil
}

// ValidateURL validates a repository URL. Only http and https are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
