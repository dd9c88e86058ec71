// Package signing provides Ed25519 key management and signature
// operations for kithkit: generate, export/load PKCS8/SPKI DER keys,
// sign and verify raw bytes, files, and canonicalized objects.
package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/kithkit/kithkit/pkg/canon"
	"github.com/kithkit/kithkit/pkg/kiterr"
)

// KeyManager handles Ed25519 key generation, encoding, and fingerprinting.
type KeyManager struct{}

// NewKeyManager creates a new KeyManager instance.
func NewKeyManager() *KeyManager {
	return &KeyManager{}
}

// GenerateKeypair generates a new Ed25519 key pair.
func (k *KeyManager) GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, kiterr.Wrap(kiterr.Invalid, "failed to generate Ed25519 key pair", err)
	}
	return pub, priv, nil
}

// ExportPrivateKeyB64 serializes the private key as PKCS8 DER + base64.
func (k *KeyManager) ExportPrivateKeyB64(priv ed25519.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", kiterr.Wrap(kiterr.Invalid, "failed to marshal private key", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ExportPublicKeyB64 serializes the public key as SPKI DER + base64.
func (k *KeyManager) ExportPublicKeyB64(pub ed25519.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", kiterr.Wrap(kiterr.Invalid, "failed to marshal public key", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// LoadPrivateKeyB64 loads a private key from PKCS8 DER + base64.
func (k *KeyManager) LoadPrivateKeyB64(b64 string) (ed25519.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to decode base64 private key", err)
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to parse PKCS8 private key", err)
	}
	edKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, kiterr.New(kiterr.Invalid, "not an Ed25519 private key")
	}
	return edKey, nil
}

// LoadPublicKeyB64 loads a public key from SPKI DER + base64.
func (k *KeyManager) LoadPublicKeyB64(b64 string) (ed25519.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to decode base64 public key", err)
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to parse SPKI public key", err)
	}
	edKey, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, kiterr.New(kiterr.Invalid, "not an Ed25519 public key")
	}
	return edKey, nil
}

// Fingerprint computes the SHA-256 fingerprint of an SPKI-encoded public key.
func (k *KeyManager) Fingerprint(pub ed25519.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", kiterr.Wrap(kiterr.Invalid, "failed to marshal public key for fingerprint", err)
	}
	hash := sha256.Sum256(der)
	return fmt.Sprintf("sha256:%x", hash), nil
}

// SignatureManager handles raw Ed25519 signature operations.
type SignatureManager struct{}

// NewSignatureManager creates a new SignatureManager instance.
func NewSignatureManager() *SignatureManager {
	return &SignatureManager{}
}

// SignBytes signs data with the private key and returns a base64-encoded
// raw 64-byte Ed25519 signature.
func (s *SignatureManager) SignBytes(data []byte, priv ed25519.PrivateKey) (string, error) {
	sig := ed25519.Sign(priv, data)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyBytes verifies a base64-encoded signature against data. Returns
// false for any malformed input or failed verification; never errors.
func (s *SignatureManager) VerifyBytes(data []byte, sigB64 string, pub ed25519.PublicKey) bool {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false
	}
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}

// SignFile hashes a file with SHA-256 and signs the 32-byte digest.
func (s *SignatureManager) SignFile(path string, priv ed25519.PrivateKey) (string, error) {
	digest, err := hashFile(path)
	if err != nil {
		return "", err
	}
	return s.SignBytes(digest, priv)
}

// VerifyFile hashes a file with SHA-256 and verifies the signature against
// the digest.
func (s *SignatureManager) VerifyFile(path, sigB64 string, pub ed25519.PublicKey) bool {
	digest, err := hashFile(path)
	if err != nil {
		return false
	}
	return s.VerifyBytes(digest, sigB64, pub)
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- caller-provided path, not attacker controlled within this package's contract
	if err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to open file for hashing", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to read file for hashing", err)
	}
	return h.Sum(nil), nil
}

// SignedObject is the {body, signature} pair produced by SignObject.
type SignedObject struct {
	Body      []byte
	Signature string
}

// SignObject canonicalizes body via canon.JSON and signs the resulting
// bytes. Used for the signed index and the signed revocation list.
func (s *SignatureManager) SignObject(body interface{}, priv ed25519.PrivateKey) (*SignedObject, error) {
	canonical, err := canon.JSON(body)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to canonicalize object for signing", err)
	}
	sig, err := s.SignBytes(canonical, priv)
	if err != nil {
		return nil, err
	}
	return &SignedObject{Body: canonical, Signature: sig}, nil
}

// VerifyObject canonicalizes body via canon.JSON and verifies the
// signature against the resulting bytes.
func (s *SignatureManager) VerifyObject(body interface{}, sigB64 string, pub ed25519.PublicKey) bool {
	canonical, err := canon.JSON(body)
	if err != nil {
		return false
	}
	return s.VerifyBytes(canonical, sigB64, pub)
}
