package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/i474232898/temperature-chart/internal/table"
)

// ErrNoRenderer is returned by Render when the service was built without one.
var ErrNoRenderer = errors.New("no renderer configured")

// ParseOptions describes the layout of a station export.
type ParseOptions struct {
	Encoding    string
	SkipRows    []int
	DateColumn  string
	ValueColumn string
	DateLayout  string
}

// Service runs the read → select → coerce → render pipeline.
type Service struct {
	source   Source
	opts     ParseOptions
	renderer Renderer
	logger   *zap.Logger
}

// NewService creates a new Service. A nil logger discards all output.
func NewService(source Source, opts ParseOptions, renderer Renderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		opts:     opts,
		renderer: renderer,
		logger:   logger,
	}
}

// Load reads the export and returns the coerced series.
func (s *Service) Load(ctx context.Context) (Series, error) {
	log := s.logger.With(zap.String("source", s.source.Name()))
	log.Debug("loading export",
		zap.String("encoding", s.opts.Encoding),
		zap.Ints("skip_rows", s.opts.SkipRows),
	)

	rc, err := s.source.Open(ctx)
	if err != nil {
		return Series{}, err
	}
	defer rc.Close()

	df, err := table.Read(rc, table.Options{
		Encoding: s.opts.Encoding,
		SkipRows: s.opts.SkipRows,
		Columns:  []string{s.opts.DateColumn, s.opts.ValueColumn},
	})
	if err != nil {
		return Series{}, fmt.Errorf("read %s: %w", s.source.Name(), err)
	}

	dates := df.Col(s.opts.DateColumn).Records()
	values := df.Col(s.opts.ValueColumn).Records()

	series := Series{
		DateColumn:  s.opts.DateColumn,
		ValueColumn: s.opts.ValueColumn,
		Readings:    Coerce(dates, values, s.opts.DateLayout),
	}

	sum := series.Summarize()
	log.Info("export loaded",
		zap.Int("rows", sum.Rows),
		zap.Int("dated", sum.Dated),
		zap.Int("valued", sum.Valued),
	)
	if sum.Dated < sum.Rows || sum.Valued < sum.Rows {
		log.Warn("some cells could not be coerced and were set to null",
			zap.Int("bad_dates", sum.Rows-sum.Dated),
			zap.Int("bad_values", sum.Rows-sum.Valued),
		)
	}

	return series, nil
}

// Render loads the export and writes the chart page to w.
func (s *Service) Render(ctx context.Context, w io.Writer) (Series, error) {
	if s.renderer == nil {
		return Series{}, ErrNoRenderer
	}
	series, err := s.Load(ctx)
	if err != nil {
		return Series{}, err
	}
	if err := s.renderer.Render(w, series); err != nil {
		return Series{}, fmt.Errorf("render chart: %w", err)
	}
	return series, nil
}

// RenderFile renders the chart to path. The file is written to a temporary
// name in the same directory and renamed into place, so a failed run never
// leaves a truncated page behind.
func (s *Service) RenderFile(ctx context.Context, path string) (Series, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Series{}, fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Series{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	series, err := s.Render(ctx, tmp)
	if err != nil {
		tmp.Close()
		return Series{}, err
	}
	if err := tmp.Close(); err != nil {
		return Series{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return Series{}, fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Series{}, fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Info("chart written", zap.String("path", path))
	return series, nil
}
