// Package validate holds the field-level checks shared by the intake,
// registration and appointment forms. Validation always runs before any
// write; a failing check never reaches a repository.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Error collects per-field validation failures. It is returned as a single
// error so the API layer can surface every failing field inline at once.
type Error struct {
	Fields map[string]string
}

func NewError() *Error {
	return &Error{Fields: make(map[string]string)}
}

func (e *Error) Add(field, message string) {
	e.Fields[field] = message
}

// Err returns the collected error, or nil when every check passed.
func (e *Error) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Leading + then digits, with dashes and spaces tolerated as separators,
	// e.g. +212-661343323.
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s\-]{5,17}[0-9]$`)
)

func Email(s string) bool {
	return emailRe.MatchString(s)
}

func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

// Name checks the shared person-name constraint: 2 to 50 characters.
func Name(s string) bool {
	return len(s) >= 2 && len(s) <= 50
}
