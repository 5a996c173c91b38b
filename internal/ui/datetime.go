package ui

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// InvalidDate is shown for created_at values that cannot be read.
const InvalidDate = "Invalid Date"

// maxEpochMillis is the largest magnitude a browser Date accepts.
const maxEpochMillis = 8.64e15

// localeLayout is the en-US locale string: "1/1/2024, 12:00:00 AM".
const localeLayout = "1/2/2006, 3:04:05 PM"

// Layouts tried in order. Zoned forms keep their offset; the rest are taken
// as wall time in the viewer's zone.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		time.RFC1123Z,
		time.RFC1123,
	}
	wallLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02",
	}
)

// ParseTimestamp reads a server timestamp: a date string in one of the
// layouts above, or a number of milliseconds since the epoch.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if ms, err := strconv.ParseFloat(raw, 64); err == nil {
		// Bare numbers are epoch milliseconds.
		if math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
	for _, l := range zonedLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	for _, l := range wallLayouts {
		if t, err := time.ParseInLocation(l, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders raw as local date/time in loc (time.Local if nil).
func FormatTimestamp(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := ParseTimestamp(raw, loc)
	if !ok {
		return InvalidDate
	}
	return t.In(loc).Format(localeLayout)
}
