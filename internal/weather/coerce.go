package weather

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDate parses s with layout. Anything unparseable yields the zero time.
func ParseDate(s, layout string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseTemperature parses s as a float. Empty, malformed and non-finite
// values yield NaN.
func ParseTemperature(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Coerce zips raw date and value cells into readings, preserving row order.
// The two slices are columns of the same table and have equal length.
func Coerce(dates, values []string, layout string) []Reading {
	readings := make([]Reading, len(dates))
	for i := range dates {
		readings[i] = Reading{
			Date:        ParseDate(dates[i], layout),
			Temperature: ParseTemperature(values[i]),
		}
	}
	return readings
}
