package formula

import (
	"fmt"

	"github.com/reoring/schemaformula/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeNodeNotFound           = "node_not_found"
	CodeUnresolvableDependency = "unresolvable_dependency"
	CodeSelfReference          = "self_reference"
	CodeCircularDependency     = "circular_dependency"
)

// Error is a field-scoped formula problem. It is always recoverable: the
// owning field reports it as a validation message.
type Error struct {
	Code   string // One of the codes listed above.
	NodeID string // The formula field's node id.
	// Details is optional: the offending raw dependency, expression, or
	// cycle description.
	Details string
	Cause   error // Optional: underlying error (e.g. a syntax error).
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("formula %s: %s", e.NodeID, e.Code)
	if e.Details != "" {
		msg += fmt.Sprintf(" (%s)", e.Details)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Code so the Err* sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Message renders a localized, user-facing message through the current
// i18n translator.
func (e *Error) Message() string {
	return i18n.T(e.Code, map[string]string{"details": e.Details})
}

// Sentinels for errors.Is matching.
var (
	ErrNodeNotFound           = &Error{Code: CodeNodeNotFound}
	ErrUnresolvableDependency = &Error{Code: CodeUnresolvableDependency}
	ErrSelfReference          = &Error{Code: CodeSelfReference}
	ErrCircularDependency     = &Error{Code: CodeCircularDependency}
)
