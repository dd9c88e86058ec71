// Package kiterr provides the structured error taxonomy shared by every
// kithkit component, mirroring the typed error-code pattern the rest of
// the codebase uses for verification results.
package kiterr

import "fmt"

// Kind identifies the taxonomy bucket an error belongs to.
type Kind string

const (
	// Invalid marks malformed input: bad semver, bad name, bad YAML, bad
	// base64 key encoding.
	Invalid Kind = "invalid"
	// NotFound marks a skill or version absent from the index.
	NotFound Kind = "not_found"
	// Integrity marks a hash mismatch or signature verification failure.
	Integrity Kind = "integrity"
	// Revoked marks an entry present in a verified revocation list.
	Revoked Kind = "revoked"
	// AlreadyInstalled marks metadata that already records the requested version.
	AlreadyInstalled Kind = "already_installed"
	// Extract marks a path-traversal attempt, truncated archive, or bad header.
	Extract Kind = "extract"
	// Fetch marks an error surfaced by the injected fetch callback.
	Fetch Kind = "fetch"
	// IO marks a local filesystem error.
	IO Kind = "io"
	// NotInstalled marks an uninstall/update attempted without existing metadata.
	NotInstalled Kind = "not_installed"
)

// Error is the structured error type returned across package boundaries.
// Verification failures never panic; they return an *Error of the
// appropriate Kind instead.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped error for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error that wraps an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if ae, ok := err.(*Error); ok {
		e = ae
	} else {
		return false
	}
	return e.Kind == kind
}
