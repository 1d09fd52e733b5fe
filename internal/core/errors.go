package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSendLogCorrupt is returned when the send log cannot be trusted
	ErrSendLogCorrupt = errors.New("send log is corrupt")
	// ErrNoLeads is returned when a sourcing run collects nothing
	ErrNoLeads = errors.New("no leads found")
)

// InputValidationError reports a missing or malformed required input
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// AuthError reports missing or rejected provider credentials
type AuthError struct {
	Provider string
	Path     string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s credentials %s: %v", e.Provider, e.Path, e.Err)
	}
	return fmt.Sprintf("%s credentials: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NetworkError reports a fetch or send that failed after all attempts
type NetworkError struct {
	Op       string
	Target   string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", e.Op, e.Target, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TemplateError lists placeholders that had neither a value nor a fallback
type TemplateError struct {
	Missing []string
}

func (e *TemplateError) Error() string {
	names := make([]string, len(e.Missing))
	for i, name := range e.Missing {
		names[i] = "{" + name + "}"
	}
	return "template placeholders without a value: " + strings.Join(names, ", ")
}
