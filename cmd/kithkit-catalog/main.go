// Command kithkit-catalog is the authority-side tool: lint submissions,
// build and incrementally update the signed catalog index, verify a
// published index, and generate signing keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:   "kithkit-catalog",
		Short: "Authority-side tooling for the kithkit skill registry",
		Long: `kithkit-catalog lints skill submissions, builds and signs the catalog
index, and verifies a published index against a public key.`,
	}
	root.Version = version.GetVersion()

	root.AddCommand(
		newLintCmd(),
		newBuildCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newKeygenCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
