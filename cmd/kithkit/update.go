package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/install"
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [skill]",
		Short: "Update one installed skill, or every installed skill with a newer version available",
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
			revoked, err := loadRevocationList(ctx, pub, fetch)
			if err != nil {
				return err
			}

			baseOpts := install.Options{
				SkillsDir: skillsDir,
				Index:     idx,
				Revoked:   revoked,
				PublicKey: pub,
				Fetch:     fetch,
				Timestamp: time.Now(),
			}

			if len(args) == 1 {
				opts := baseOpts
				opts.Name = args[0]
				return runUpdate(ctx, opts)
			}

			installed, err := install.List(skillsDir, idx)
			if err != nil {
				return err
			}
			for _, skill := range installed {
				if !skill.HasUpdate {
					continue
				}
				opts := baseOpts
				opts.Name = skill.Name
				if err := runUpdate(ctx, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

func runUpdate(ctx context.Context, opts install.Options) error {
	result, err := install.Update(ctx, opts)
	if err != nil {
		return err
	}
	if !result.Updated {
		fmt.Printf("%s@%s already current\n", opts.Name, result.CurrentVersion)
		return nil
	}
	fmt.Printf("updated %s: %s -> %s\n", opts.Name, result.PreviousVersion, result.CurrentVersion)
	return nil
}
