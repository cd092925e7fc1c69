package codec

import "time"

// DurationSeconds returns a Codec that converts between the API's numeric
// seconds (fractional seconds allowed, e.g. 100.5) and time.Duration.
func DurationSeconds() Codec[float64, time.Duration] { return durationCodec{} }

type durationCodec struct{}

func (durationCodec) Decode(w float64) (time.Duration, error) {
	return time.Duration(w * float64(time.Second)), nil
}

func (durationCodec) Encode(n time.Duration) (float64, error) {
	return n.Seconds(), nil
}
