// Package source defines the fetch boundary every core package depends on
// instead of importing net/http directly: installs and index-cache
// refreshes take a FetchFunc supplied by the caller. Catalog builds read
// archives from a local directory and do not fetch.
package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/kithkit/kithkit/pkg/kiterr"
)

// FetchFunc retrieves the bytes at url. Implementations may be a real
// HTTP client (pkg/transport), a local file reader, or an in-memory
// bundle lookup; core packages never know which.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Chain tries each FetchFunc in order, returning the first success.
func Chain(fetchers ...FetchFunc) FetchFunc {
	return func(ctx context.Context, url string) ([]byte, error) {
		var lastErr error
		for _, f := range fetchers {
			data, err := f(ctx, url)
			if err == nil {
				return data, nil
			}
			lastErr = err
		}
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, kiterr.New(kiterr.Fetch, fmt.Sprintf("no sources configured for %s", url))
	}
}

// Bundle is an offline, air-gapped snapshot of fetchable resources: the
// catalog index, the revocation list, and any archives a client expects
// to need without network access, packaged as a single dated, versioned
// JSON container keyed by URL.
type Bundle struct {
	BundleVersion string            `json:"bundle_version"`
	CreatedAt     string            `json:"created_at"`
	Entries       map[string]string `json:"entries"` // url -> base64 content
}

// NewBundle creates an empty bundle stamped with createdAt (RFC3339).
func NewBundle(createdAt string) *Bundle {
	return &Bundle{
		BundleVersion: "1.0",
		CreatedAt:     createdAt,
		Entries:       map[string]string{},
	}
}

// Put stores content under url, overwriting any existing entry.
func (b *Bundle) Put(url string, content []byte) {
	b.Entries[url] = base64.StdEncoding.EncodeToString(content)
}

// ParseBundle parses a bundle from JSON bytes.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to parse trust bundle", err)
	}
	if b.Entries == nil {
		b.Entries = map[string]string{}
	}
	return &b, nil
}

// Marshal serializes the bundle to indented JSON for on-disk storage.
func (b *Bundle) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to marshal trust bundle", err)
	}
	return data, nil
}

// Fetch looks up url in the bundle, implementing FetchFunc. Missing
// entries are a kiterr.NotFound, never a panic or a nil-slice success,
// so callers can Chain a bundle ahead of a network source.
func (b *Bundle) Fetch(_ context.Context, url string) ([]byte, error) {
	encoded, ok := b.Entries[url]
	if !ok {
		return nil, kiterr.New(kiterr.NotFound, fmt.Sprintf("%s not present in trust bundle", url))
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, fmt.Sprintf("corrupt bundle entry for %s", url), err)
	}
	return content, nil
}
