package models

import (
	"net/mail"
	"strings"
)

type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level problems in user input.
type ValidationError struct {
	Issues []Issue `json:"errors"`
}

func (v *ValidationError) Add(field, msg string) {
	v.Issues = append(v.Issues, Issue{Field: field, Message: msg})
}

// OrNil returns nil when no issues were recorded.
func (v *ValidationError) OrNil() error {
	if len(v.Issues) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Issues))
	for _, is := range v.Issues {
		msgs = append(msgs, is.Field+": "+is.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
