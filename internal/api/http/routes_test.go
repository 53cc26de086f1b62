package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/temperature-chart/internal/chart"
	"github.com/i474232898/temperature-chart/internal/weather"
)

type stringSource struct {
	data string
	err  error
}

func (s stringSource) Name() string { return "memory" }

func (s stringSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.data)), nil
}

const export = "date,mean\n" +
	"2024/1/1,7.9\n" +
	"2024/1/2,\n" +
	"oops,6.1\n" +
	"2024/1/4,5.5\n"

func newTestApp(src weather.Source) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	svc := weather.NewService(src, weather.ParseOptions{
		Encoding:    "utf-8",
		DateColumn:  "date",
		ValueColumn: "mean",
		DateLayout:  "2006/1/2",
	}, chart.NewLineRenderer(chart.Options{Title: "Preview"}, nil), nil)
	RegisterRoutes(app, svc)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestSeriesEndpoint(t *testing.T) {
	app := newTestApp(stringSource{data: export})

	resp, body := get(t, app, "/api/v1/series")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		DateColumn string `json:"dateColumn"`
		Readings   []struct {
			Date        *string  `json:"date"`
			Temperature *float64 `json:"temperature"`
		} `json:"readings"`
		Summary weather.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "date", payload.DateColumn)
	require.Len(t, payload.Readings, 4)
	assert.Nil(t, payload.Readings[1].Temperature)
	assert.Nil(t, payload.Readings[2].Date)
	assert.Equal(t, 4, payload.Summary.Rows)
	assert.Equal(t, 3, payload.Summary.Dated)
}

func TestSeriesEndpointRange(t *testing.T) {
	app := newTestApp(stringSource{data: export})

	resp, body := get(t, app, "/api/v1/series?from=2024-01-02&to=2024-01-04")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"2024-01-04"`)
	assert.NotContains(t, string(body), `"2024-01-01"`)

	resp, _ = get(t, app, "/api/v1/series?from=2024-01-02T00:00:00Z&to=2024-01-02T00:00:00Z")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSeriesEndpointValidation(t *testing.T) {
	app := newTestApp(stringSource{data: export})

	for _, target := range []string{
		"/api/v1/series?from=2024-01-02",
		"/api/v1/series?from=2024-01-04&to=2024-01-02",
		"/api/v1/series?from=yesterday&to=2024-01-02",
	} {
		resp, body := get(t, app, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Contains(t, string(body), `"error":true`, target)
	}
}

func TestChartEndpoint(t *testing.T) {
	app := newTestApp(stringSource{data: export})

	resp, body := get(t, app, "/chart")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Contains(t, string(body), "Preview")
	assert.Contains(t, string(body), "2024-01-04")
}

func TestSourceFailuresAreBadGateway(t *testing.T) {
	app := newTestApp(stringSource{err: errors.New("download failed")})

	for _, target := range []string{"/chart", "/api/v1/series", "/api/v1/summary"} {
		resp, body := get(t, app, target)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, target)
		assert.Contains(t, string(body), "download failed", target)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	app := newTestApp(stringSource{data: export})

	resp, body := get(t, app, "/api/v1/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sum weather.Summary
	require.NoError(t, json.Unmarshal(body, &sum))
	assert.Equal(t, 3, sum.Valued)
	require.NotNil(t, sum.Max)
	assert.Equal(t, 7.9, *sum.Max)
}
