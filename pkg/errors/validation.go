package errors

import (
	"strings"
	"unicode"
)

// ValidateLocation validates the free-text location used in the user search
// query. GitHub accepts almost anything here, so the rules only reject input
// that would break the query string:
//   - No empty or whitespace-only locations
//   - No control characters
//   - Maximum length of 256 characters
//
// Locations containing spaces are allowed; the search client quotes them.
func ValidateLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return New(ErrCodeInvalidLocation, "location cannot be empty")
	}

	if len(location) > 256 {
		return New(ErrCodeInvalidLocation, "location too long (max 256 characters)")
	}

	for _, r := range location {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLocation, "location contains invalid control characters")
		}
	}

	if strings.Contains(location, `"`) {
		return New(ErrCodeInvalidLocation, "location cannot contain double quotes")
	}

	return nil
}

// ValidateLogin rejects an empty login. Logins come from the API itself and
// may carry characters the signup form never allows (underscores on managed
// Enterprise accounts, trailing or doubled hyphens on legacy accounts), so no
// pattern is enforced; callers path-escape the login when building URLs.
func ValidateLogin(login string) error {
	if strings.TrimSpace(login) == "" {
		return New(ErrCodeInvalidLogin, "login cannot be empty")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
