package path

import (
	"fmt"

	"github.com/reoring/schemaformula/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	// Syntax errors raised while parsing a pointer or simple path string.
	CodeInvalidSegment        = "invalid_segment"
	CodeEmptySegment          = "empty_segment"
	CodePropertiesWithoutName = "properties_without_name"

	// Structurally impossible operations. These are caller bugs.
	CodeCannotAddItemsToEmptyPath = "cannot_add_items_to_empty_path"
	CodeCannotReplaceRoot         = "cannot_replace_root"
	CodeCannotRemoveRoot          = "cannot_remove_root"
)

// SyntaxError reports a malformed pointer or simple path string.
type SyntaxError struct {
	Code  string // One of the syntax codes listed above.
	Token string // Offending token (may be empty for empty segments).
	Input string // Full input being parsed.
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("path: %s in %q", e.Code, e.Input)
	}
	return fmt.Sprintf("path: %s %q in %q", e.Code, e.Token, e.Input)
}

// Is reports whether target is a *SyntaxError with the same code, so the
// Err* sentinels below work with errors.Is.
func (e *SyntaxError) Is(target error) bool {
	t, ok := target.(*SyntaxError)
	return ok && t.Code == e.Code
}

// Message renders a localized message through the current i18n translator.
func (e *SyntaxError) Message() string {
	return i18n.T(e.Code, map[string]string{"details": e.Token})
}

// OperationError reports a Path or tree operation that cannot be performed on
// the given path.
type OperationError struct {
	Code string
	Path string // JSON Pointer of the path involved ("" for the root).
}

func (e *OperationError) Error() string {
	if e.Path == "" {
		return "path: " + e.Code
	}
	return fmt.Sprintf("path: %s at %s", e.Code, e.Path)
}

func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	return ok && t.Code == e.Code
}

func (e *OperationError) Message() string { return i18n.T(e.Code, nil) }

// Sentinels for errors.Is matching.
var (
	ErrInvalidSegment            = &SyntaxError{Code: CodeInvalidSegment}
	ErrEmptySegment              = &SyntaxError{Code: CodeEmptySegment}
	ErrPropertiesWithoutName     = &SyntaxError{Code: CodePropertiesWithoutName}
	ErrCannotAddItemsToEmptyPath = &OperationError{Code: CodeCannotAddItemsToEmptyPath}
	ErrCannotReplaceRoot         = &OperationError{Code: CodeCannotReplaceRoot}
	ErrCannotRemoveRoot          = &OperationError{Code: CodeCannotRemoveRoot}
)
