// Package period computes the date windows reports are queried over.
package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// ErrInvalidDate is returned for dates and months that do not parse.
var ErrInvalidDate = errors.New("invalid date")

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Date truncates t to midnight UTC of its calendar date.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Month returns the calendar month containing t.
func Month(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, -1)}
}

// ParseMonth parses "YYYY-MM" into its month window.
func ParseMonth(s string) (Window, error) {
	t, err := time.Parse(model.MonthFormat, s)
	if err != nil {
		return Window{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return Month(t), nil
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Parse builds a window from two ISO dates.
func Parse(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, err
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidDate, end, start)
	}
	return Window{Start: s, End: e}, nil
}

// Trailing returns the n full months before the month containing now.
func Trailing(now time.Time, n int) Window {
	current := Month(now)
	return Window{
		Start: current.Start.AddDate(0, -n, 0),
		End:   current.Start.AddDate(0, 0, -1),
	}
}

// Next returns the month after the one starting w.
func (w Window) Next() Window { return Month(w.Start.AddDate(0, 1, 0)) }

// Previous returns the month before the one starting w.
func (w Window) Previous() Window { return Month(w.Start.AddDate(0, -1, 0)) }

// Contains reports whether t falls on a date inside w.
func (w Window) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// IsCurrent reports whether now falls inside w.
func (w Window) IsCurrent(now time.Time) bool { return w.Contains(now) }

// Months returns the month windows overlapping w, in order.
func (w Window) Months() []Window {
	var out []Window
	for m := Month(w.Start); !m.Start.After(w.End); m = m.Next() {
		out = append(out, m)
	}
	return out
}

// Key returns the "YYYY-MM" key of the month starting w.
func (w Window) Key() string { return w.Start.Format(model.MonthFormat) }

func (w Window) String() string {
	return w.Start.Format(model.DateFormat) + ".." + w.End.Format(model.DateFormat)
}
