package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/screener"
)

func newSelftestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the packaged adversarial cases against the pattern detector and report catch rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := screener.RunSelftest(screener.PatternDetector{})

			fmt.Printf("ran %d cases\n", summary.Total)
			for _, r := range summary.Results {
				status := "missed"
				if r.Caught {
					status = "caught"
				}
				fmt.Printf("  [tier %d] %s: %s\n", r.Tier, r.CaseID, status)
			}
			for tier, rate := range summary.TierCatchRate {
				fmt.Printf("tier %d catch rate: %.0f%%\n", tier, rate*100)
			}
			for _, cat := range summary.BlindSpots {
				fmt.Printf("blind spot: %s\n", cat)
			}
			for _, rec := range summary.Recommendations {
				fmt.Printf("recommendation: %s\n", rec)
			}

			failed := false
			for tier, rate := range summary.TierCatchRate {
				threshold, enforced := screener.TierThreshold(tier)
				if enforced && rate < threshold {
					failed = true
				}
			}
			if failed {
				os.Exit(1)
			}
			return nil
		},
	}
	return cmd
}
