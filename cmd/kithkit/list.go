package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/install"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed skills, annotated with available updates when an index is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx := bestEffortIndex(context.Background())

			installed, err := install.List(skillsDir, idx)
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				fmt.Println("no skills installed")
				return nil
			}
			for _, s := range installed {
				if s.HasUpdate {
					fmt.Printf("%s@%s (update available: %s)\n", s.Name, s.Version, s.LatestVersion)
				} else {
					fmt.Printf("%s@%s\n", s.Name, s.Version)
				}
			}
			return nil
		},
	}
	return cmd
}

// bestEffortIndex loads the catalog index for update annotation purposes
// only; any failure (no --index-url, unreachable network) degrades to a
// plain install listing rather than an error.
func bestEffortIndex(ctx context.Context) *catalog.SignedIndex {
	pub, err := loadPublicKey()
	if err != nil {
		return nil
	}
	fetch, err := buildFetch()
	if err != nil {
		return nil
	}
	idx, err := loadIndex(ctx, pub, fetch)
	if err != nil {
		return nil
	}
	return idx
}
