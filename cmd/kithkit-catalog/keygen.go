package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/signing"
)

func newKeygenCmd() *cobra.Command {
	var outputDir string
	var prefix string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 signing keypair for the catalog authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			km := signing.NewKeyManager()
			pub, priv, err := km.GenerateKeypair()
			if err != nil {
				return err
			}

			privB64, err := km.ExportPrivateKeyB64(priv)
			if err != nil {
				return err
			}
			pubB64, err := km.ExportPublicKeyB64(pub)
			if err != nil {
				return err
			}
			fingerprint, err := km.Fingerprint(pub)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			privPath := filepath.Join(outputDir, prefix+"_private.b64")
			pubPath := filepath.Join(outputDir, prefix+"_public.b64")
			if err := os.WriteFile(privPath, []byte(privB64+"\n"), 0o600); err != nil {
				return fmt.Errorf("failed to write private key: %w", err)
			}
			if err := os.WriteFile(pubPath, []byte(pubB64+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write public key: %w", err)
			}

			fmt.Printf("Generated Ed25519 keypair:\n")
			fmt.Printf("  Fingerprint: %s\n", fingerprint)
			fmt.Printf("  Private key: %s (export as %s)\n", privPath, privateKeyEnvVar)
			fmt.Printf("  Public key:  %s (export as %s)\n", pubPath, publicKeyEnvVar)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "output directory for key files")
	cmd.Flags().StringVar(&prefix, "prefix", "kithkit-catalog", "filename prefix for generated keys")
	return cmd
}
