// Package schedule computes bookable reservation time slots from a shop's
// configured window and validates reservation submissions.
package schedule

import (
	"errors"
	"time"
)

// Placeholder is the leading entry of every slot list; clients render it as
// the unselected option.
const Placeholder = "please select"

// slot cadence is fixed at 30 minutes regardless of shop configuration.
const interval = 30 * time.Minute

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

var (
	// ErrPastDateTime rejects reservations not strictly in the future.
	// Booking exactly "now" is rejected, not accepted.
	ErrPastDateTime = errors.New("reservation date and time must be later than the current time")
	// ErrNoWindow means the shop has no reservation window configured.
	ErrNoWindow = errors.New("shop does not accept reservations")
	// ErrOutsideWindow means the submitted time is not one of the shop's
	// generated slots.
	ErrOutsideWindow = errors.New("time is outside the shop's reservation hours")
	// ErrPartySize rejects party sizes outside the fixed 1..10 menu.
	ErrPartySize = errors.New("party size must be between 1 and 10")
	// ErrMalformed covers unparseable date or time values.
	ErrMalformed = errors.New("invalid reservation date or time")
)

// Slots returns the ordered bookable time-of-day values for a window,
// 30 minutes apart and inclusive of both endpoints when they align to the
// cadence, preceded by the placeholder entry. It returns nil when either
// bound is unset, malformed, or start is after end. The sequence is
// recomputed on every call, never cached.
func Slots(start, end *string) []string {
	if start == nil || end == nil {
		return nil
	}
	s, err := time.Parse(clockLayout, *start)
	if err != nil {
		return nil
	}
	e, err := time.Parse(clockLayout, *end)
	if err != nil {
		return nil
	}
	if s.After(e) {
		return nil
	}
	out := []string{Placeholder}
	for cur := s; !cur.After(e); cur = cur.Add(interval) {
		out = append(out, cur.Format(clockLayout))
	}
	return out
}

// PartySizes returns the fixed party-size menu, 1 through 10 inclusive,
// independent of shop configuration.
func PartySizes() []int {
	sizes := make([]int, 10)
	for i := range sizes {
		sizes[i] = i + 1
	}
	return sizes
}

// ValidatePartySize checks the submitted party size against the fixed menu.
func ValidatePartySize(n int) error {
	if n < 1 || n > 10 {
		return ErrPartySize
	}
	return nil
}

// ValidateSlot checks that clock is one of the slots generated from the
// given window: within [start, end] and aligned to the 30-minute grid
// anchored at start.
func ValidateSlot(start, end *string, clock string) error {
	if start == nil || end == nil {
		return ErrNoWindow
	}
	s, err := time.Parse(clockLayout, *start)
	if err != nil {
		return ErrNoWindow
	}
	e, err := time.Parse(clockLayout, *end)
	if err != nil {
		return ErrNoWindow
	}
	if s.After(e) {
		return ErrNoWindow
	}
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return ErrMalformed
	}
	if t.Before(s) || t.After(e) {
		return ErrOutsideWindow
	}
	if t.Sub(s)%interval != 0 {
		return ErrOutsideWindow
	}
	return nil
}

// At combines a reservation date ("2006-01-02") and clock ("15:04") into a
// time.Time in the given location.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrMalformed
	}
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, ErrMalformed
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// ValidateFuture rejects a reservation whose combined date and time,
// interpreted in loc, is not strictly later than now.
func ValidateFuture(date, clock string, loc *time.Location, now time.Time) error {
	at, err := At(date, clock, loc)
	if err != nil {
		return err
	}
	if !at.After(now) {
		return ErrPastDateTime
	}
	return nil
}
