package weather

import "time"

// Summary describes how much of a series survived coercion and its value range.
type Summary struct {
	Rows   int `json:"rows"`
	Dated  int `json:"dated"`
	Valued int `json:"valued"`

	Min  *float64 `json:"minTemperature,omitempty"`
	Max  *float64 `json:"maxTemperature,omitempty"`
	Mean *float64 `json:"meanTemperature,omitempty"`

	First *time.Time `json:"first,omitempty"`
	Last  *time.Time `json:"last,omitempty"`
}

// Summarize counts valid cells and computes min/max/mean over readings that
// have a temperature. First and Last are the earliest and latest parsed dates.
func (s Series) Summarize() Summary {
	sum := Summary{Rows: len(s.Readings)}

	var (
		total       float64
		lo, hi      float64
		first, last time.Time
	)

	for _, r := range s.Readings {
		if r.HasDate() {
			sum.Dated++
			if first.IsZero() || r.Date.Before(first) {
				first = r.Date
			}
			if r.Date.After(last) {
				last = r.Date
			}
		}

		if !r.HasTemperature() {
			continue
		}
		if sum.Valued == 0 || r.Temperature < lo {
			lo = r.Temperature
		}
		if sum.Valued == 0 || r.Temperature > hi {
			hi = r.Temperature
		}
		total += r.Temperature
		sum.Valued++
	}

	if sum.Valued > 0 {
		mean := total / float64(sum.Valued)
		sum.Min, sum.Max, sum.Mean = &lo, &hi, &mean
	}
	if sum.Dated > 0 {
		sum.First, sum.Last = &first, &last
	}
	return sum
}
