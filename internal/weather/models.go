package weather

import (
	"encoding/json"
	"math"
	"time"
)

// DateFormat is how reading dates are rendered on the chart axis and in JSON.
const DateFormat = "2006-01-02"

// Reading is one coerced row of the station export.
// A zero Date means the date cell could not be parsed; a NaN Temperature
// means the value cell could not be parsed.
type Reading struct {
	Date        time.Time
	Temperature float64
}

// HasDate reports whether the date cell was parsed.
func (r Reading) HasDate() bool {
	return !r.Date.IsZero()
}

// HasTemperature reports whether the value cell was parsed.
func (r Reading) HasTemperature() bool {
	return !math.IsNaN(r.Temperature)
}

type readingJSON struct {
	Date        *string  `json:"date"`
	Temperature *float64 `json:"temperature"`
}

// MarshalJSON encodes missing cells as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	var out readingJSON
	if r.HasDate() {
		d := r.Date.Format(DateFormat)
		out.Date = &d
	}
	if r.HasTemperature() {
		t := r.Temperature
		out.Temperature = &t
	}
	return json.Marshal(out)
}

// Series is the cleaned two-column table, in file order.
type Series struct {
	DateColumn  string    `json:"dateColumn"`
	ValueColumn string    `json:"valueColumn"`
	Readings    []Reading `json:"readings"`
}

// Between returns the dated readings whose date lies within [from, to].
func (s Series) Between(from, to time.Time) Series {
	out := Series{DateColumn: s.DateColumn, ValueColumn: s.ValueColumn, Readings: []Reading{}}
	for _, r := range s.Readings {
		if !r.HasDate() {
			continue
		}
		if (r.Date.Equal(from) || r.Date.After(from)) &&
			(r.Date.Equal(to) || r.Date.Before(to)) {
			out.Readings = append(out.Readings, r)
		}
	}
	return out
}
