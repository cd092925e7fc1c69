package gridbase

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Type errors: the assigned value's concrete type is outside the field's
	// accepted set, or a link field was given a non-model parameter or target.
	CodeInvalidType  = "invalid_type"
	CodeInvalidModel = "invalid_model"
	CodeInvalidLink  = "invalid_link"
	// Value errors: acceptable type, failed semantic constraint.
	CodeOutOfRange    = "out_of_range"
	CodeInvalidFormat = "invalid_format"
	// Attribute errors: the attribute operation itself is illegal.
	CodeReadonlyField   = "readonly_field"
	CodeUnknownField    = "unknown_field"
	CodeDeleteForbidden = "delete_forbidden"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // Attribute path (for example: /first_name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected types, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"string", "got":"int"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /first_name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// classify maps an issue code to its error family.
func classify(code string) string {
	switch code {
	case CodeInvalidType, CodeInvalidModel, CodeInvalidLink:
		return "type"
	case CodeOutOfRange, CodeInvalidFormat:
		return "value"
	case CodeReadonlyField, CodeUnknownField, CodeDeleteForbidden:
		return "attribute"
	}
	return ""
}

func hasFamily(err error, family string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if classify(it.Code) == family {
			return true
		}
	}
	return false
}

// IsTypeError reports whether err carries at least one type-family issue:
// a value whose concrete type is not in a field's accepted set, or a link
// field constructed with (or assigned) something that is not a model.
func IsTypeError(err error) bool { return hasFamily(err, "type") }

// IsValueError reports whether err carries at least one value-family issue:
// an acceptable type that fails a semantic constraint (e.g. a rating below 1).
func IsValueError(err error) bool { return hasFamily(err, "value") }

// IsAttributeError reports whether err carries at least one attribute-family
// issue: readonly assignment, unknown attribute, or attempted deletion.
func IsAttributeError(err error) bool { return hasFamily(err, "attribute") }
