package common

import (
	"errors"
	"fmt"
	"time"
)

const (
	// WeekIDLayout is the calendar layout of a week identifier.
	WeekIDLayout = "2006-01-02"

	// WeekAnchorDay is the weekday every week identifier falls on.
	WeekAnchorDay = time.Sunday

	hoursInDay = 24
	daysInWeek = 7
)

var ErrInvalidWeekID = errors.New("invalid week id")

// WeekID is the anchor date (UTC) of the calendar week a block belongs to.
type WeekID string

// WeekIDFromTime returns the id of the week containing t.
func WeekIDFromTime(t time.Time) WeekID {
	return WeekID(weekStart(t).Format(WeekIDLayout))
}

// WeekIDFromUnix returns the id of the week containing the given unix timestamp.
func WeekIDFromUnix(ts uint64) WeekID {
	return WeekIDFromTime(time.Unix(int64(ts), 0)) //nolint:gosec
}

// ParseWeekID validates s as a YYYY-MM-DD date that falls on the week anchor day.
func ParseWeekID(s string) (WeekID, error) {
	t, err := time.Parse(WeekIDLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidWeekID, s)
	}
	if t.Weekday() != WeekAnchorDay {
		return "", fmt.Errorf("%w: %s is a %s, expected %s", ErrInvalidWeekID, s, t.Weekday(), WeekAnchorDay)
	}
	return WeekID(s), nil
}

// Time returns the start of the week in UTC.
func (w WeekID) Time() time.Time {
	t, err := time.Parse(WeekIDLayout, string(w))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Previous returns the id of the week before w.
func (w WeekID) Previous() WeekID {
	return w.Add(-1)
}

// Add returns the week n weeks after w (n may be negative).
func (w WeekID) Add(n int) WeekID {
	return WeekIDFromTime(w.Time().Add(time.Duration(n*daysInWeek*hoursInDay) * time.Hour))
}

// Trailing returns w and the n-1 weeks before it, oldest first.
func (w WeekID) Trailing(n int) []WeekID {
	if n <= 0 {
		return nil
	}
	weeks := make([]WeekID, n)
	for i := range n {
		weeks[i] = w.Add(i - n + 1)
	}
	return weeks
}

func (w WeekID) String() string {
	return string(w)
}

func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(WeekAnchorDay) + daysInWeek) % daysInWeek
	return day.AddDate(0, 0, -offset)
}
