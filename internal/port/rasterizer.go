package port

import "context"

// Rasterizer converts one PDF document into an ordered list of page images.
// The output ordering must be stable for the same input bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfBytes []byte, dpi int) ([][]byte, error)
}
