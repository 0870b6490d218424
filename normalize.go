package accounts

import "strings"

// NormalizeEmail canonicalizes an email address by case folding. It
// runs before validation, uniqueness checks, and persistence so all
// three observe the same form. Empty input passes through unchanged.
func NormalizeEmail(raw string) string {
	if raw == "" {
		return raw
	}
	return strings.ToLower(raw)
}
