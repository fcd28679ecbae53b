// Package validate holds the enum checks shared by the resource handlers.
package validate

import (
	"fmt"
	"strings"
)

// Error reports a query or path value outside its allowed set.
type Error struct {
	Type     string
	Subject  string
	Allowed  []string
	Provided string
}

func (e *Error) Error() string {
	if len(e.Allowed) == 0 {
		return e.Subject
	}
	return fmt.Sprintf("%s must be one of: %s", e.Subject, strings.Join(e.Allowed, ", "))
}

// OneOf returns the allowed value matching raw, or fallback when raw is empty.
// When fold is set the comparison ignores case and the canonical allowed
// spelling is returned.
func OneOf(errType, subject, raw, fallback string, allowed []string, fold bool) (string, error) {
	if raw == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if a == raw || (fold && strings.EqualFold(a, raw)) {
			return a, nil
		}
	}
	return "", &Error{Type: errType, Subject: subject, Allowed: allowed, Provided: raw}
}
