// Package transport provides the default net/http implementation of
// source.FetchFunc. No core package imports this directly; the CLI
// wires it in at startup, keeping fetch an injected boundary.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/source"
)

// DefaultTimeout bounds how long a fetch may block.
const DefaultTimeout = 10 * time.Second

// HTTPFetcher fetches resources over HTTP(S) with a bounded timeout.
type HTTPFetcher struct {
	client *http.Client
}

// New creates an HTTPFetcher with DefaultTimeout.
func New() *HTTPFetcher {
	return NewWithTimeout(DefaultTimeout)
}

// NewWithTimeout creates an HTTPFetcher with a custom per-request timeout.
func NewWithTimeout(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch implements source.FetchFunc.
func (h *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Fetch, fmt.Sprintf("failed to build request for %s", url), err)
	}

	resp, err := h.client.Do(req) // #nosec G704 -- url supplied by catalog/archive records, not raw user input
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Fetch, fmt.Sprintf("failed to fetch %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, kiterr.New(kiterr.Fetch, fmt.Sprintf("unexpected status %d fetching %s", resp.StatusCode, url))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Fetch, fmt.Sprintf("failed to read response body for %s", url), err)
	}
	return data, nil
}

// AsFetchFunc adapts h to source.FetchFunc.
func (h *HTTPFetcher) AsFetchFunc() source.FetchFunc {
	return h.Fetch
}
