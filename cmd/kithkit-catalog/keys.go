package main

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/kithkit/kithkit/pkg/signing"
)

const (
	privateKeyEnvVar = "KITHKIT_CATALOG_PRIVATE_KEY"
	publicKeyEnvVar  = "KITHKIT_CATALOG_PUBLIC_KEY"
)

func loadPrivateKeyFromEnv() (ed25519.PrivateKey, error) {
	b64 := os.Getenv(privateKeyEnvVar)
	if b64 == "" {
		return nil, fmt.Errorf("%s is not set", privateKeyEnvVar)
	}
	return signing.NewKeyManager().LoadPrivateKeyB64(b64)
}

func loadPublicKeyFromEnv() (ed25519.PublicKey, error) {
	b64 := os.Getenv(publicKeyEnvVar)
	if b64 == "" {
		return nil, fmt.Errorf("%s is not set", publicKeyEnvVar)
	}
	return signing.NewKeyManager().LoadPublicKeyB64(b64)
}
