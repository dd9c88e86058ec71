package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/install"
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <skill> [version]",
		Short: "Install a skill from the catalog, verifying its signature before extraction",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			name := args[0]
			var version string
			if len(args) == 2 {
				version = args[1]
			}

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
			revoked, err := loadRevocationList(ctx, pub, fetch)
			if err != nil {
				return err
			}

			meta, err := install.Install(ctx, install.Options{
				SkillsDir: skillsDir,
				Name:      name,
				Version:   version,
				Index:     idx,
				Revoked:   revoked,
				PublicKey: pub,
				Fetch:     fetch,
				Timestamp: time.Now(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("installed %s@%s into %s/%s\n", meta.Name, meta.Version, skillsDir, meta.Name)
			return nil
		},
	}
	return cmd
}
