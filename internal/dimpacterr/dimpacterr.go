// Package dimpacterr implements the error taxonomy of §7: a closed set of
// error kinds and a wrapper type carrying a kind, message, and optional
// remediation hint. Grounded on internal/errors/errors.go in SimplyLiz-CodeMCP,
// narrowed to the kinds spec.md names.
package dimpacterr

import (
	"errors"
	"fmt"
)

// Kind is the closed error-kind taxonomy of §7. These are kinds, not Go
// type names: every DimpactError carries exactly one.
type Kind string

const (
	// KindInputFormat covers a malformed diff, malformed seed id, or
	// unknown kind tag. Reported to the user; the command exits non-zero
	// with no partial output.
	KindInputFormat Kind = "input-format"

	// KindAnalyzerInternal marks an analyzer that returned an empty result
	// for a file it could not parse. Reported only in verbose logs; the
	// file is treated as having no symbols and no references for this run.
	KindAnalyzerInternal Kind = "analyzer-internal"

	// KindIO covers a missing file, permission denial, or store open
	// failure. Fatal for the current operation; transactional semantics
	// leave the store unchanged.
	KindIO Kind = "io"

	// KindSchemaMismatch marks a persistent store written by an
	// incompatible schema version. Triggers a full rebuild after clearing
	// the store.
	KindSchemaMismatch Kind = "schema-mismatch"

	// KindEmptyResult marks a diff-derived seed set that came back empty.
	// Not an error condition; output structures are emitted with empty
	// arrays.
	KindEmptyResult Kind = "empty-result"

	// KindInternal is the catch-all SimplyLiz-CodeMCP also carries, for failures
	// that don't fit one of the five named kinds above.
	KindInternal Kind = "internal-error"
)

// DimpactError is the error wrapper type used at every component boundary
// within the core: errors cross boundaries only as typed results, never as
// exceptional control flow.
type DimpactError struct {
	Code    Kind
	Message string
	Hint    string
	cause   error
}

func (e *DimpactError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause, if any, so errors.Is/errors.As see
// through a DimpactError to its origin.
func (e *DimpactError) Unwrap() error {
	return e.cause
}

// New constructs a DimpactError with no remediation hint and no wrapped
// cause.
func New(code Kind, message string) *DimpactError {
	return &DimpactError{Code: code, Message: message}
}

// Wrap constructs a DimpactError carrying cause as its unwrap target.
func Wrap(code Kind, cause error, message string) *DimpactError {
	return &DimpactError{Code: code, Message: message, cause: cause}
}

// WithHint returns a copy of e carrying a remediation hint, for errors
// reported straight to the user (§7 input-format / io).
func (e *DimpactError) WithHint(hint string) *DimpactError {
	cp := *e
	cp.Hint = hint
	return &cp
}

// Code extracts the Kind from err if it is (or wraps) a *DimpactError.
func Code(err error) (Kind, bool) {
	var de *DimpactError
	if !errors.As(err, &de) {
		return "", false
	}
	return de.Code, true
}
