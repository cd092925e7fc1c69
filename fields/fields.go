// Package fields implements the field descriptors: one constructor per
// remote column type, each defining an accepted-type set, optional semantic
// checks, and the wire <-> native conversion for that column.
//
// Writable constructors take functional options; readonly constructors
// (AutoNumber, CreatedTime, ...) take none, so readonly can never be turned
// off for server-computed columns.
package fields

import (
	"fmt"
	"reflect"

	gridbase "github.com/reoring/gridbase"
	"github.com/reoring/gridbase/i18n"
)

// Option adjusts a writable field at construction time.
type Option func(*base)

// ReadOnly marks the field readonly: assignment after construction fails
// with an attribute error.
func ReadOnly() Option { return func(b *base) { b.readonly = true } }

// NoTypeCheck disables the accepted-type check on assignment. Semantic
// (value) checks and readonly enforcement stay active.
func NoTypeCheck() Option { return func(b *base) { b.validateType = false } }

// base carries the shared descriptor state. Most scalar fields are a bare
// base with a class name and an accepted set; fields with conversions embed
// it and override ToInternal/ToRecord.
type base struct {
	className    string
	name         string
	readonly     bool
	validateType bool
	accepted     gridbase.KindSet
	defaultVal   any
	modelParam   string
}

func newBase(className, name string, accepted gridbase.KindSet, opts ...Option) base {
	b := base{
		className:    className,
		name:         name,
		validateType: true,
		accepted:     accepted,
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) Name() string        { return b.name }
func (b *base) ReadOnly() bool      { return b.readonly }
func (b *base) ValidatesType() bool { return b.validateType }
func (b *base) DefaultValue() any   { return b.defaultVal }

func (b *base) Accept(v any) error {
	k := gridbase.KindOf(v)
	if b.accepted.Has(k) {
		return nil
	}
	return typeIssue(b.name, b.accepted.String(), k)
}

func (b *base) Check(v any) error { return nil }

func (b *base) ToInternal(v any) (any, error) { return v, nil }
func (b *base) ToRecord(v any) (any, error)   { return v, nil }

func (b *base) String() string {
	return gridbase.Repr(b.className, b.name, b.modelParam, b.readonly, b.validateType)
}

func (b *base) class() string { return b.className }

// classNamer lets parameterized fields embed another field's class name in
// their representation.
type classNamer interface{ class() string }

func classOf(f gridbase.Field) string {
	if c, ok := f.(classNamer); ok {
		return c.class()
	}
	return "Field"
}

// ---- issue helpers ----

func typeIssue(name, expected string, got gridbase.Kind) error {
	return gridbase.Issues{{
		Path:    "/" + name,
		Code:    gridbase.CodeInvalidType,
		Message: i18n.T(gridbase.CodeInvalidType, nil),
		Hint:    fmt.Sprintf("expected %s, got %s", expected, got),
		Params:  map[string]any{"expected": expected, "got": got.String()},
	}}
}

func valueIssue(name, hint string) error {
	return gridbase.Issues{{
		Path:    "/" + name,
		Code:    gridbase.CodeOutOfRange,
		Message: i18n.T(gridbase.CodeOutOfRange, nil),
		Hint:    hint,
	}}
}

// ---- numeric and sequence coercion ----

// toInt extracts an integer from the wire forms a JSON number can take.
// Non-integral floats do not qualify.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		if float32(int(n)) == n {
			return int(n), true
		}
	case float64:
		if float64(int(n)) == n {
			return int(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// asList normalizes any slice value to []any. Strings never qualify even
// though they are iterable.
func asList(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case []any:
		return s, true
	case string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
