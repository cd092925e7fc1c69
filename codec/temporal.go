package codec

import (
	"time"

	gridbase "github.com/reoring/gridbase"
)

const (
	dateLayout = "2006-01-02"
	// The API emits datetimes as UTC with millisecond precision and a "Z"
	// suffix. Encoding canonicalizes to this layout so decode/encode round
	// trips are exact.
	datetimeLayout = "2006-01-02T15:04:05.000Z"
)

// Date returns a Codec that converts between ISO-8601 date strings
// ("2023-01-01") and time.Time at UTC midnight.
func Date() Codec[string, time.Time] { return dateCodec{} }

type dateCodec struct{}

func (dateCodec) Decode(w string) (time.Time, error) {
	t, err := time.Parse(dateLayout, w)
	if err != nil {
		return time.Time{}, gridbase.Issues{{
			Path:    "/",
			Code:    gridbase.CodeInvalidFormat,
			Message: "invalid ISO-8601 date",
			Cause:   err,
		}}
	}
	return t, nil
}

func (dateCodec) Encode(n time.Time) (string, error) {
	return n.UTC().Format(dateLayout), nil
}

// DateTime returns a Codec that converts between ISO-8601 datetime strings
// ("2023-04-12T09:30:00.000Z") and time.Time. Decode accepts RFC3339 and
// RFC3339Nano inputs as well; Encode always produces the canonical
// millisecond-precision UTC form.
func DateTime() Codec[string, time.Time] { return datetimeCodec{} }

type datetimeCodec struct{}

func (datetimeCodec) Decode(w string) (time.Time, error) {
	t, err := parseDatetime(w)
	if err != nil {
		return time.Time{}, gridbase.Issues{{
			Path:    "/",
			Code:    gridbase.CodeInvalidFormat,
			Message: "invalid ISO-8601 datetime",
			Cause:   err,
		}}
	}
	return t, nil
}

func (datetimeCodec) Encode(n time.Time) (string, error) {
	return n.UTC().Truncate(time.Millisecond).Format(datetimeLayout), nil
}

func parseDatetime(s string) (time.Time, error) {
	if t, err := time.Parse(datetimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
