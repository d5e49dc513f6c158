// Package codec converts between ISO-8601 text and time.Time for the Date and
// Datetime schema kinds.
package codec

import (
	"errors"
	"strings"
	"time"
)

// NaiveZone marks a time.Time parsed from text without an offset. It reads as
// UTC but is distinct from time.UTC, so naive and aware values stay apart.
var NaiveZone = time.FixedZone("naive", 0)

// ErrInvalid is returned when no layout matches.
var ErrInvalid = errors.New("codec: not an ISO-8601 value")

// Default output layouts.
const (
	DateLayout          = "2006-01-02"
	NaiveDatetimeLayout = "2006-01-02T15:04:05.999999999"
	AwareDatetimeLayout = time.RFC3339Nano
)

var awareLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"20060102T150405",
	DateLayout,
	"20060102",
}

// IsNaive reports whether t carries no offset information.
func IsNaive(t time.Time) bool { return t.Location() == NaiveZone }

// Naive drops the offset of t, keeping its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), NaiveZone)
}

// ParseDatetime parses s with layout, or with the ISO-8601 layouts when
// layout is empty. Inputs without an offset come back in NaiveZone.
func ParseDatetime(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if layout != "" {
		t, err := time.ParseInLocation(layout, s, NaiveZone)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	}
	for _, l := range awareLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	for _, l := range naiveLayouts {
		if t, err := time.ParseInLocation(l, s, NaiveZone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalid
}

var dateLayouts = []string{DateLayout, "20060102"}

// ParseDate parses s as a calendar date, with layout or the ISO-8601 date
// layouts. Text carrying a time of day is rejected.
func ParseDate(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := dateLayouts
	if layout != "" {
		layouts = []string{layout}
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return Date(t), nil
		}
	}
	return time.Time{}, ErrInvalid
}

// Date returns midnight UTC of t's calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t with layout, defaulting to YYYY-MM-DD.
func FormatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = DateLayout
	}
	return t.Format(layout)
}

// FormatDatetime renders t with layout. The default is RFC 3339 for aware
// values and the same layout without offset for naive ones.
func FormatDatetime(t time.Time, layout string) string {
	if layout != "" {
		return t.Format(layout)
	}
	if IsNaive(t) {
		return t.Format(NaiveDatetimeLayout)
	}
	return t.Format(AwareDatetimeLayout)
}
