package cachestore

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/signing"
)

func openTestCache(t *testing.T, ttl time.Duration) *IndexCache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, ttl)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// buildSignedIndex produces a real, validly signed empty catalog index so
// tests exercise the actual signing/verification path instead of a
// hand-rolled fixture.
func buildSignedIndex(t *testing.T) ([]byte, ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	km := signing.NewKeyManager()
	pub, priv, err := km.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	idx, err := catalog.BuildIndex(t.TempDir(), priv, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	data, err := json.Marshal(idx)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data, pub, priv
}

func TestIndexCache_FetchesAndCaches(t *testing.T) {
	c := openTestCache(t, time.Hour)
	data, pub, _ := buildSignedIndex(t)

	calls := 0
	fetch := func(_ context.Context, _ string) ([]byte, error) {
		calls++
		return data, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), "https://example.com/index.json", pub, fetch); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1 (cache should serve subsequent Gets)", calls)
	}
}

func TestIndexCache_RefetchesAfterTTLExpires(t *testing.T) {
	c := openTestCache(t, time.Minute)
	data, pub, _ := buildSignedIndex(t)

	calls := 0
	fetch := func(_ context.Context, _ string) ([]byte, error) {
		calls++
		return data, nil
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return now }

	if _, err := c.Get(context.Background(), "u", pub, fetch); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Get(context.Background(), "u", pub, fetch); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if calls != 2 {
		t.Errorf("fetch called %d times, want 2 after TTL expiry", calls)
	}
}

func TestIndexCache_InvalidateForcesRefetch(t *testing.T) {
	c := openTestCache(t, time.Hour)
	data, pub, _ := buildSignedIndex(t)

	calls := 0
	fetch := func(_ context.Context, _ string) ([]byte, error) {
		calls++
		return data, nil
	}

	if _, err := c.Get(context.Background(), "u", pub, fetch); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := c.Invalidate(); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := c.Get(context.Background(), "u", pub, fetch); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if calls != 2 {
		t.Errorf("fetch called %d times, want 2 after Invalidate", calls)
	}
}

func TestIndexCache_TamperedFetchFails(t *testing.T) {
	c := openTestCache(t, time.Hour)
	_, pub, _ := buildSignedIndex(t)

	tampered := []byte(`{"version":1,"updated":"x","skills":[],"signature":"bm90LWEtcmVhbC1zaWduYXR1cmU="}`)
	fetch := func(_ context.Context, _ string) ([]byte, error) {
		return tampered, nil
	}

	_, err := c.Get(context.Background(), "u", pub, fetch)
	if !kiterr.Is(err, kiterr.Integrity) {
		t.Errorf("Get() error = %v, want kiterr.Integrity", err)
	}
}

func TestIndexCache_FetchErrorPropagates(t *testing.T) {
	c := openTestCache(t, time.Hour)
	_, pub, _ := buildSignedIndex(t)

	fetch := func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("network down")
	}

	_, err := c.Get(context.Background(), "u", pub, fetch)
	if !kiterr.Is(err, kiterr.Fetch) {
		t.Errorf("Get() error = %v, want kiterr.Fetch", err)
	}
}
