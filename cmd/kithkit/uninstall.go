package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/install"
)

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <skill>",
		Short: "Remove an installed skill, backing up its config file first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := install.Uninstall(skillsDir, args[0])
			if err != nil {
				return err
			}
			if result.ConfigBackedUp {
				fmt.Printf("uninstalled %s, config backed up to %s\n", args[0], result.BackupPath)
			} else {
				fmt.Printf("uninstalled %s\n", args[0])
			}
			return nil
		},
	}
	return cmd
}
