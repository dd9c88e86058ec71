// Command kithkit is the consumer-side CLI: search the catalog, install,
// update, uninstall, and list skills, and run the self-test harness.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/internal/version"
)

var (
	indexURL      string
	revocationURL string
	publicKeyB64  string
	skillsDir     string
	cacheDBPath   string
	bundlePath    string
	cacheTTL      string
)

func main() {
	root := &cobra.Command{
		Use:   "kithkit",
		Short: "Install and manage signed AI-agent skills from a kithkit registry",
	}
	root.Version = version.GetVersion()

	home, _ := os.UserHomeDir()
	defaultSkillsDir := "./skills"
	if home != "" {
		defaultSkillsDir = home + "/.kithkit/skills"
	}

	root.PersistentFlags().StringVar(&indexURL, "index-url", os.Getenv("KITHKIT_INDEX_URL"), "URL of the signed catalog index")
	root.PersistentFlags().StringVar(&revocationURL, "revocation-url", os.Getenv("KITHKIT_REVOCATION_URL"), "URL of the signed revocation list (optional)")
	root.PersistentFlags().StringVar(&publicKeyB64, "public-key", os.Getenv(publicKeyEnvVar), "base64 SPKI DER catalog public key")
	root.PersistentFlags().StringVar(&skillsDir, "skills-dir", defaultSkillsDir, "directory skills are installed into")
	root.PersistentFlags().StringVar(&cacheDBPath, "cache-db", "", "path to the index cache database (default ~/.kithkit/index_cache.db)")
	root.PersistentFlags().StringVar(&bundlePath, "bundle", "", "offline trust bundle to prefer over the network")
	root.PersistentFlags().StringVar(&cacheTTL, "cache-ttl", "15m", "catalog index cache freshness window")

	root.AddCommand(
		newSearchCmd(),
		newInstallCmd(),
		newUpdateCmd(),
		newUninstallCmd(),
		newListCmd(),
		newSelftestCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
