package fields

import (
	gridbase "github.com/reoring/gridbase"
)

type anyField struct{ base }

func (f *anyField) Accept(v any) error { return nil }

// Any is the unconstrained base field: every value is accepted. The remote
// API will still reject what the column cannot hold.
func Any(name string, opts ...Option) gridbase.Field {
	return &anyField{base: newBase("Field", name, nil, opts...)}
}

func stringField(className, name string, opts ...Option) gridbase.Field {
	b := newBase(className, name, gridbase.Kinds(gridbase.KindString), opts...)
	return &b
}

// Text is a single-line or long text column.
func Text(name string, opts ...Option) gridbase.Field {
	return stringField("TextField", name, opts...)
}

// RichText is a long text column with rich-text formatting enabled.
func RichText(name string, opts ...Option) gridbase.Field {
	return stringField("RichTextField", name, opts...)
}

// Email is an email column.
func Email(name string, opts ...Option) gridbase.Field {
	return stringField("EmailField", name, opts...)
}

// Phone is a phone-number column.
func Phone(name string, opts ...Option) gridbase.Field {
	return stringField("PhoneNumberField", name, opts...)
}

// URL is a URL column.
func URL(name string, opts ...Option) gridbase.Field {
	return stringField("UrlField", name, opts...)
}

// Select is a single-select column; the native value is the option name.
func Select(name string, opts ...Option) gridbase.Field {
	return stringField("SelectField", name, opts...)
}

// Checkbox is a boolean column. Its default is false, never nil.
func Checkbox(name string, opts ...Option) gridbase.Field {
	b := newBase("CheckboxField", name, gridbase.Kinds(gridbase.KindBool), opts...)
	b.defaultVal = false
	return &b
}

// Number is a numeric column accepting int or float natives.
func Number(name string, opts ...Option) gridbase.Field {
	b := newBase("NumberField", name, gridbase.Kinds(gridbase.KindInt, gridbase.KindFloat), opts...)
	return &b
}

// Currency is a currency column; like Number it accepts int or float.
func Currency(name string, opts ...Option) gridbase.Field {
	b := newBase("CurrencyField", name, gridbase.Kinds(gridbase.KindInt, gridbase.KindFloat), opts...)
	return &b
}

// Percent is a percent column; like Number it accepts int or float.
func Percent(name string, opts ...Option) gridbase.Field {
	b := newBase("PercentField", name, gridbase.Kinds(gridbase.KindInt, gridbase.KindFloat), opts...)
	return &b
}

// Float is a numeric column restricted to float natives.
func Float(name string, opts ...Option) gridbase.Field {
	b := newBase("FloatField", name, gridbase.Kinds(gridbase.KindFloat), opts...)
	return &b
}

// intField normalizes wire numbers to int on hydration. JSON decoding hands
// every number over as float64, so integral floats collapse back to int.
type intField struct{ base }

func (f *intField) ToInternal(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if n, ok := toInt(v); ok {
		return n, nil
	}
	return nil, typeIssue(f.name, "int", gridbase.KindOf(v))
}

// Integer is a numeric column restricted to integer natives.
func Integer(name string, opts ...Option) gridbase.Field {
	return &intField{base: newBase("IntegerField", name, gridbase.Kinds(gridbase.KindInt), opts...)}
}

// ratingField is an integer column with 1-indexed semantics: a rating below
// 1 is a value error even when type validation is disabled.
type ratingField struct{ intField }

func (f *ratingField) Check(v any) error {
	if n, ok := toInt(v); ok && n < 1 {
		return valueIssue(f.name, "ratings are 1-indexed")
	}
	return nil
}

// Rating is a rating column: integers only, minimum 1.
func Rating(name string, opts ...Option) gridbase.Field {
	return &ratingField{intField{base: newBase("RatingField", name, gridbase.Kinds(gridbase.KindInt), opts...)}}
}

// Barcode is a barcode column; the native value is the raw wire mapping
// ({"type": ..., "text": ...}).
func Barcode(name string, opts ...Option) gridbase.Field {
	b := newBase("BarcodeField", name, gridbase.Kinds(gridbase.KindMap), opts...)
	return &b
}

// Collaborator is a single-collaborator column; the native value is the raw
// user-reference mapping ({"id": ..., "email": ...}).
func Collaborator(name string, opts ...Option) gridbase.Field {
	b := newBase("CollaboratorField", name, gridbase.Kinds(gridbase.KindMap), opts...)
	return &b
}
