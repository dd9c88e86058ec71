// Package cachestore provides the on-disk TTL cache for the signed
// catalog index, backed by an embedded single-file key-value store: one
// authoritative signed index held on local disk, re-verified and
// refetched once its TTL expires.
package cachestore

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/source"
)

var indexCacheBucket = []byte("index_cache")

// cacheKey is the single record this bucket ever holds: one catalog
// index per cache database, whatever URL it was fetched from. The URL
// passed to Get is not part of the key.
const cacheKey = "catalog_index"

// record is the stored envelope: the raw signed-index bytes plus the
// wall-clock time they were fetched, so Get can judge staleness without
// re-parsing the index itself.
type record struct {
	FetchedAt time.Time `json:"fetched_at"`
	IndexJSON []byte    `json:"index_json"`
}

// IndexCache is a TTL-bounded, signature-verified cache for one signed
// catalog index.
type IndexCache struct {
	db    *bbolt.DB
	ttl   time.Duration
	clock func() time.Time
}

// Open creates or opens the BoltDB file at dbPath with the given
// freshness window. An empty dbPath defaults to
// ~/.kithkit/index_cache.db under the user's home directory.
func Open(dbPath string, ttl time.Duration) (*IndexCache, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, kiterr.Wrap(kiterr.IO, "failed to get home directory", err)
		}
		dbPath = filepath.Join(homeDir, ".kithkit", "index_cache.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to create cache directory", err)
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to open index cache database", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexCacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, kiterr.Wrap(kiterr.IO, "failed to create index cache bucket", err)
	}

	return &IndexCache{db: db, ttl: ttl, clock: time.Now}, nil
}

// Close closes the underlying database.
func (c *IndexCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns a verified catalog index, serving the cached copy when it
// is younger than the configured TTL and re-fetching through fetch
// otherwise. A freshly fetched index that fails signature verification
// against pub is never cached and is returned as a kiterr.Integrity
// error.
func (c *IndexCache) Get(ctx context.Context, indexURL string, pub ed25519.PublicKey, fetch source.FetchFunc) (*catalog.SignedIndex, error) {
	if cached, ok := c.readFresh(); ok {
		idx, err := decodeIndex(cached.IndexJSON)
		if err == nil && catalog.VerifyIndex(idx, pub) {
			return idx, nil
		}
		// A corrupt or re-keyed cache entry falls through to a refetch
		// rather than surfacing a stale/garbage index.
	}

	data, err := fetch(ctx, indexURL)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Fetch, fmt.Sprintf("failed to fetch catalog index from %s", indexURL), err)
	}

	idx, err := decodeIndex(data)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to parse fetched catalog index", err)
	}
	if !catalog.VerifyIndex(idx, pub) {
		return nil, kiterr.New(kiterr.Integrity, "fetched catalog index failed signature verification")
	}

	if err := c.write(data); err != nil {
		return nil, err
	}
	return idx, nil
}

// Invalidate discards the cached index, forcing the next Get to refetch.
func (c *IndexCache) Invalidate() error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(indexCacheBucket).Delete([]byte(cacheKey))
	})
	if err != nil {
		return kiterr.Wrap(kiterr.IO, "failed to invalidate index cache", err)
	}
	return nil
}

func (c *IndexCache) readFresh() (record, bool) {
	var rec record
	found := false
	_ = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(indexCacheBucket).Get([]byte(cacheKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return record{}, false
	}
	if c.clock().Sub(rec.FetchedAt) >= c.ttl {
		return record{}, false
	}
	return rec, true
}

func (c *IndexCache) write(indexJSON []byte) error {
	rec := record{FetchedAt: c.clock(), IndexJSON: indexJSON}
	data, err := json.Marshal(rec)
	if err != nil {
		return kiterr.Wrap(kiterr.Invalid, "failed to marshal cache record", err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(indexCacheBucket).Put([]byte(cacheKey), data)
	})
	if err != nil {
		return kiterr.Wrap(kiterr.IO, "failed to write index cache", err)
	}
	return nil
}

func decodeIndex(data []byte) (*catalog.SignedIndex, error) {
	var idx catalog.SignedIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}
