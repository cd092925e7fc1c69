package gridbase

import "fmt"

// Field is the descriptor contract: one Field defines validation and
// conversion rules for a single attribute of a Model. Descriptors are
// immutable after model definition and shared across all instances of the
// owning model; they hold no per-instance state.
type Field interface {
	// Name returns the wire field name (the column name on the remote table).
	Name() string
	// ReadOnly reports whether post-construction assignment is rejected.
	ReadOnly() bool
	// ValidatesType reports whether Accept is enforced on assignment.
	ValidatesType() bool
	// DefaultValue is returned by Instance.Get when the field was never set.
	DefaultValue() any
	// Accept checks type-tag membership of v in the accepted set. The store
	// skips it entirely when ValidatesType is false.
	Accept(v any) error
	// Check enforces semantic constraints (value errors). It runs even when
	// type validation is disabled.
	Check(v any) error
	// ToInternal converts a wire value to its native representation.
	ToInternal(v any) (any, error)
	// ToRecord converts a native value back to its wire representation.
	ToRecord(v any) (any, error)
	// String renders the stable textual form, e.g.
	// TextField('First Name', readonly=false, validate_type=true).
	fmt.Stringer
}

// Repr renders the stable descriptor representation. Logging and debugging
// tooling may parse this, so the format is frozen:
//
//	ClassName('wire name', readonly=<bool>, validate_type=<bool>)
//
// modelParam, when non-empty, is inserted after the name as model=<...>.
func Repr(className, name, modelParam string, readonly, validateType bool) string {
	if modelParam != "" {
		return fmt.Sprintf("%s('%s', model=%s, readonly=%t, validate_type=%t)",
			className, name, modelParam, readonly, validateType)
	}
	return fmt.Sprintf("%s('%s', readonly=%t, validate_type=%t)",
		className, name, readonly, validateType)
}
