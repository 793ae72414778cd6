// Package biztime centralizes wall-clock access. All stored and transported
// times are UTC.
package biztime

import "time"

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// OrDefault returns c, or NowUTC when c is nil.
func (c Clock) OrDefault() Clock {
	if c == nil {
		return NowUTC
	}
	return c
}
