package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/kithkit/kithkit/pkg/cachestore"
	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/revocation"
	"github.com/kithkit/kithkit/pkg/signing"
	"github.com/kithkit/kithkit/pkg/source"
	"github.com/kithkit/kithkit/pkg/transport"
)

const publicKeyEnvVar = "KITHKIT_CATALOG_PUBLIC_KEY"

func loadPublicKey() (ed25519.PublicKey, error) {
	if publicKeyB64 == "" {
		return nil, fmt.Errorf("a catalog public key is required: set --public-key or %s", publicKeyEnvVar)
	}
	return signing.NewKeyManager().LoadPublicKeyB64(publicKeyB64)
}

// buildFetch wires the fetch boundary: an offline bundle (if configured)
// takes priority over the network.
func buildFetch() (source.FetchFunc, error) {
	var fetchers []source.FetchFunc
	if bundlePath != "" {
		data, err := os.ReadFile(bundlePath) // #nosec G304 -- operator-provided path
		if err != nil {
			return nil, fmt.Errorf("failed to read trust bundle: %w", err)
		}
		bundle, err := source.ParseBundle(data)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, bundle.Fetch)
	}
	fetchers = append(fetchers, transport.New().AsFetchFunc())
	return source.Chain(fetchers...), nil
}

func openCache() (*cachestore.IndexCache, error) {
	ttl, err := time.ParseDuration(cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid --cache-ttl %q: %w", cacheTTL, err)
	}
	return cachestore.Open(cacheDBPath, ttl)
}

// loadIndex fetches and signature-verifies the catalog index, preferring
// the TTL cache when fresh.
func loadIndex(ctx context.Context, pub ed25519.PublicKey, fetch source.FetchFunc) (*catalog.SignedIndex, error) {
	if indexURL == "" {
		return nil, fmt.Errorf("--index-url (or KITHKIT_INDEX_URL) is required")
	}

	cache, err := openCache()
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	return cache.Get(ctx, indexURL, pub, fetch)
}

// loadRevocationList fetches and verifies the revocation list if a URL
// is configured; returns nil (no revocation check) otherwise.
func loadRevocationList(ctx context.Context, pub ed25519.PublicKey, fetch source.FetchFunc) (*revocation.SignedList, error) {
	if revocationURL == "" {
		return nil, nil
	}
	data, err := fetch(ctx, revocationURL)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Fetch, "failed to fetch revocation list", err)
	}
	list, err := revocation.ParseSignedList(data)
	if err != nil {
		return nil, err
	}
	if !revocation.Verify(list, pub) {
		return nil, kiterr.New(kiterr.Integrity, "revocation list signature verification failed")
	}
	return list, nil
}
