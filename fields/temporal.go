package fields

import (
	"time"

	gridbase "github.com/reoring/gridbase"
	"github.com/reoring/gridbase/codec"
)

type dateField struct{ base }

func (f *dateField) ToInternal(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, typeIssue(f.name, "string", gridbase.KindOf(v))
	}
	return codec.Date().Decode(s)
}

func (f *dateField) ToRecord(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, typeIssue(f.name, "time", gridbase.KindOf(v))
	}
	return codec.Date().Encode(t)
}

// Date is a date column: wire ISO-8601 date string ("2023-01-01"), native
// time.Time at UTC midnight.
func Date(name string, opts ...Option) gridbase.Field {
	return &dateField{base: newBase("DateField", name, gridbase.Kinds(gridbase.KindTime), opts...)}
}

type datetimeField struct{ base }

func (f *datetimeField) ToInternal(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, typeIssue(f.name, "string", gridbase.KindOf(v))
	}
	return codec.DateTime().Decode(s)
}

func (f *datetimeField) ToRecord(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, typeIssue(f.name, "time", gridbase.KindOf(v))
	}
	return codec.DateTime().Encode(t)
}

// Datetime is a datetime column: wire ISO-8601 datetime string with
// millisecond precision and "Z" suffix ("2023-04-12T09:30:00.000Z"), native
// time.Time. Conversion round trips exactly in both directions.
func Datetime(name string, opts ...Option) gridbase.Field {
	return &datetimeField{base: newBase("DatetimeField", name, gridbase.Kinds(gridbase.KindTime), opts...)}
}

type durationField struct{ base }

func (f *durationField) ToInternal(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	secs, ok := toFloat(v)
	if !ok {
		return nil, typeIssue(f.name, "int|float", gridbase.KindOf(v))
	}
	return codec.DurationSeconds().Decode(secs)
}

func (f *durationField) ToRecord(v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, typeIssue(f.name, "duration", gridbase.KindOf(v))
	}
	return codec.DurationSeconds().Encode(d)
}

// Duration is a duration column: wire numeric seconds (fractional allowed),
// native time.Duration.
func Duration(name string, opts ...Option) gridbase.Field {
	return &durationField{base: newBase("DurationField", name, gridbase.Kinds(gridbase.KindDuration), opts...)}
}
