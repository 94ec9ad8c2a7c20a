package slot

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire format of log timestamps. Values are always UTC.
const TimestampLayout = "2006-01-02T15:04:05Z"

// DefaultShift moves logs made between midnight and 06:00 UTC to the previous
// day, which is the date geocaching.com displays for them.
const DefaultShift = 6 * time.Hour

// TimestampError is returned when a log timestamp does not match TimestampLayout.
type TimestampError struct {
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("parse log timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

// Normalizer maps raw log timestamps to the day they are attributed to.
type Normalizer struct {
	// Shift is subtracted from the parsed instant before the day is taken.
	Shift time.Duration
}

// NewNormalizer returns a Normalizer using DefaultShift.
func NewNormalizer() Normalizer {
	return Normalizer{Shift: DefaultShift}
}

// Normalize parses ts and returns the key of the day it belongs to.
func (n Normalizer) Normalize(ts string) (Key, error) {
	t, err := time.ParseInLocation(TimestampLayout, ts, time.UTC)
	if err != nil {
		return Key{}, &TimestampError{Value: ts, Err: err}
	}
	return FromTime(t.Add(-n.Shift)), nil
}
