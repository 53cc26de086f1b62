package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/temperature-chart/internal/common"
	"github.com/i474232898/temperature-chart/internal/weather"
)

// ErrNoInput is returned when no input path or URL is configured.
var ErrNoInput = errors.New("no input configured")

// New returns an HTTPSource for http(s) URLs and a FileSource otherwise.
func New(input string, client *http.Client) (weather.Source, error) {
	if input == "" {
		return nil, ErrNoInput
	}
	if common.HasPrefixAny(input, "http://", "https://") {
		return NewHTTPSource(client, input), nil
	}
	return NewFileSource(input), nil
}

// FileSource reads an export from the local filesystem.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return s.path
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	return f, nil
}

// HTTPSource downloads an export, retrying transient failures behind a circuit breaker.
type HTTPSource struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewHTTPSource(client *http.Client, url string) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "csv-download",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &HTTPSource{
		url: url,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (s *HTTPSource) Name() string {
	return s.url
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, s.url, nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", s.url, err)
	}
	return resp.Body, nil
}
