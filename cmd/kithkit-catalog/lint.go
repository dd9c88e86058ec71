package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/screener"
)

func newLintCmd() *cobra.Command {
	var indexPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lint <dir>",
		Short: "Run structural and pattern checks over a skill submission directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			files, err := loadSkillFiles(dir)
			if err != nil {
				return err
			}

			var existingNames []string
			if indexPath != "" {
				idx, err := loadIndex(indexPath)
				if err != nil {
					return err
				}
				for _, s := range idx.Skills {
					existingNames = append(existingNames, s.Name)
				}
			}

			result := screener.Lint(files, existingNames)

			if jsonOutput {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal lint result: %w", err)
				}
				fmt.Println(string(out))
			} else {
				printLintResult(result)
			}

			if !result.Pass {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "existing catalog index, for typosquat name checking")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// knownSkillFiles lists every filename lint reads from a submission
// directory: the required manifest.yaml and SKILL.md plus the optional
// reference.md and CHANGELOG.md. Other files are not read.
var knownSkillFiles = []string{"manifest.yaml", "SKILL.md", "reference.md", "CHANGELOG.md"}

func loadSkillFiles(dir string) (map[string][]byte, error) {
	files := map[string][]byte{}
	for _, name := range knownSkillFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) // #nosec G304 -- operator-provided directory
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files[name] = data
	}
	return files, nil
}

func printLintResult(result screener.LintResult) {
	status := "PASS"
	if !result.Pass {
		status = "FAIL"
	}
	fmt.Printf("%s (%dms) — %d error(s), %d warning(s), %d info\n",
		status, result.DurationMS, result.Score.Errors, result.Score.Warnings, result.Score.Infos)

	for _, check := range result.Checks {
		for _, f := range check.Findings {
			loc := ""
			if f.File != "" {
				loc = " " + f.File
				if f.Line > 0 {
					loc += fmt.Sprintf(":%d", f.Line)
				}
			}
			fmt.Printf("  [%s] %s%s: %s\n", f.Severity, f.Check, loc, f.Message)
		}
	}
}

func loadIndex(path string) (*catalog.SignedIndex, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-provided path
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}
	var idx catalog.SignedIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}
	return &idx, nil
}
