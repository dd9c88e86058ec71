package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/catalog"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <index>",
		Short: "Verify a catalog index's signature against the configured public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := loadPublicKeyFromEnv()
			if err != nil {
				return err
			}

			idx, err := loadIndex(args[0])
			if err != nil {
				return err
			}

			if !catalog.VerifyIndex(idx, pub) {
				fmt.Println("INVALID: signature verification failed")
				os.Exit(1)
			}
			fmt.Printf("VALID: %d skills, updated %s\n", len(idx.Skills), idx.Updated)
			return nil
		},
	}
	return cmd
}
