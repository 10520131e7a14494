package rasterize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"baucheck/internal/port"
)

const defaultTimeout = 120 * time.Second

// Client talks to the external PDF rasterizer service over HTTP. The service
// accepts raw PDF bytes and answers with base64-encoded page images in stable
// page order.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a rasterizer client for the given service endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type rasterizeResponse struct {
	Pages []string `json:"pages"`
	Error string   `json:"error,omitempty"`
}

// Rasterize converts a PDF into one PNG per page. Page order follows the
// document and is stable for the same input bytes.
func (c *Client) Rasterize(ctx context.Context, pdfBytes []byte, dpi int) ([][]byte, error) {
	url := fmt.Sprintf("%s/rasterize?dpi=%s", c.endpoint, strconv.Itoa(dpi))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(pdfBytes))
	if err != nil {
		return nil, fmt.Errorf("building rasterize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rasterize call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rasterize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rasterizer returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed rasterizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding rasterize response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("rasterizer error: %s", parsed.Error)
	}

	pages := make([][]byte, 0, len(parsed.Pages))
	for i, encoded := range parsed.Pages {
		png, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding page %d: %w", i, err)
		}
		pages = append(pages, png)
	}
	return pages, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ port.Rasterizer = (*Client)(nil)
