package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/catalog"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <archives-dir> [index]",
		Short: "Build a fresh signed catalog index from a directory of per-skill archives",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivesDir := args[0]
			indexPath := "index.json"
			if len(args) == 2 {
				indexPath = args[1]
			}

			priv, err := loadPrivateKeyFromEnv()
			if err != nil {
				return err
			}

			idx, err := catalog.BuildIndex(archivesDir, priv, time.Now())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(idx, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal index: %w", err)
			}
			if err := os.WriteFile(indexPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write index: %w", err)
			}

			fmt.Printf("Wrote %s: %d skills\n", indexPath, len(idx.Skills))
			return nil
		},
	}
	return cmd
}
