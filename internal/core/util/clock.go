package util

import "time"

// Clock returns the current instant. Values are UTC with microsecond
// precision so they round-trip through every supported store unchanged.
type Clock func() time.Time

func SystemClock() time.Time {
	return Normalize(time.Now())
}

func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
