package flow

import (
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validEmail reports whether s is a syntactically valid email address.
func validEmail(s string) bool {
	return validate.Var(strings.TrimSpace(s), "required,email") == nil
}

// validTxID applies the transaction-id shape check: minimum length, no
// embedded whitespace.
func validTxID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return false
	}
	return !strings.ContainsAny(s, " \t\n\r")
}
