package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/catalog"
)

func newSearchCmd() *cobra.Command {
	var tag, capability string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog index by name, description, tag, or capability",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pub, err := loadPublicKey()
			if err != nil {
				return err
			}
			fetch, err := buildFetch()
			if err != nil {
				return err
			}
			idx, err := loadIndex(ctx, pub, fetch)
			if err != nil {
				return err
			}

			var text string
			if len(args) == 1 {
				text = args[0]
			}
			results := catalog.Search(idx, catalog.Filter{Text: text, Tag: tag, Capability: capability})

			if len(results) == 0 {
				fmt.Println("no matching skills")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%s@%s  %s  [%s]\n", r.Name, r.Latest, r.Description, r.TrustLevel)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "filter to skills carrying this tag")
	cmd.Flags().StringVar(&capability, "capability", "", "filter to skills declaring this capability")
	return cmd
}
