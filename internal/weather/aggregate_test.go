package weather

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() Series {
	return Series{
		DateColumn:  "年月日",
		ValueColumn: "平均気温(℃)",
		Readings: []Reading{
			{Date: day(2024, 1, 3), Temperature: 5},
			{Date: day(2024, 1, 1), Temperature: -1},
			{Date: time.Time{}, Temperature: 9},
			{Date: day(2024, 1, 2), Temperature: math.NaN()},
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := sampleSeries().Summarize()

	assert.Equal(t, 4, sum.Rows)
	assert.Equal(t, 3, sum.Dated)
	assert.Equal(t, 3, sum.Valued)

	require.NotNil(t, sum.Min)
	require.NotNil(t, sum.Max)
	require.NotNil(t, sum.Mean)
	assert.Equal(t, -1.0, *sum.Min)
	assert.Equal(t, 9.0, *sum.Max)
	assert.InDelta(t, 13.0/3.0, *sum.Mean, 1e-9)

	require.NotNil(t, sum.First)
	require.NotNil(t, sum.Last)
	assert.Equal(t, day(2024, 1, 1), *sum.First)
	assert.Equal(t, day(2024, 1, 3), *sum.Last)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Series{Readings: []Reading{{Temperature: math.NaN()}}}.Summarize()

	assert.Equal(t, 1, sum.Rows)
	assert.Zero(t, sum.Dated)
	assert.Zero(t, sum.Valued)
	assert.Nil(t, sum.Min)
	assert.Nil(t, sum.Mean)
	assert.Nil(t, sum.First)
}

func TestReadingJSONUsesNullForMissingCells(t *testing.T) {
	b, err := json.Marshal(sampleSeries().Readings)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"date":"2024-01-03","temperature":5},
		{"date":"2024-01-01","temperature":-1},
		{"date":null,"temperature":9},
		{"date":"2024-01-02","temperature":null}
	]`, string(b))
}

func TestBetween(t *testing.T) {
	got := sampleSeries().Between(day(2024, 1, 2), day(2024, 1, 3))

	require.Len(t, got.Readings, 2)
	assert.Equal(t, day(2024, 1, 3), got.Readings[0].Date)
	assert.Equal(t, day(2024, 1, 2), got.Readings[1].Date)
	assert.Equal(t, "年月日", got.DateColumn)

	empty := sampleSeries().Between(day(2030, 1, 1), day(2030, 1, 2))
	assert.NotNil(t, empty.Readings)
	assert.Empty(t, empty.Readings)
}
