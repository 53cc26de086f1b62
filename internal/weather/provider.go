package weather

import (
	"context"
	"io"
)

// Source abstracts where a station export is read from (local file, HTTP download).
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Renderer turns a series into a standalone HTML page.
type Renderer interface {
	Render(w io.Writer, series Series) error
}
