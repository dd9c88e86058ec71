package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/catalog"
)

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <archive> [index]",
		Short: "Sign one archive and insert or update it in the catalog index",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := args[0]
			indexPath := "index.json"
			if len(args) == 2 {
				indexPath = args[1]
			}

			priv, err := loadPrivateKeyFromEnv()
			if err != nil {
				return err
			}

			existing := &catalog.SignedIndex{Version: 1}
			if data, err := os.ReadFile(indexPath); err == nil { // #nosec G304 -- operator-provided path
				if err := json.Unmarshal(data, existing); err != nil {
					return fmt.Errorf("failed to parse existing index %s: %w", indexPath, err)
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to read index %s: %w", indexPath, err)
			}

			updated, err := catalog.UpdateIndex(existing, archivePath, priv, time.Now())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(updated, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal index: %w", err)
			}
			if err := os.WriteFile(indexPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write index: %w", err)
			}

			fmt.Printf("Signed %s, wrote %s\n", archivePath, indexPath)
			return nil
		},
	}
	return cmd
}
