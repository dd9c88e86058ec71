package screener

import (
	"time"

	"github.com/kithkit/kithkit/pkg/manifest"
)

// CheckResult is one named sub-check's findings.
type CheckResult struct {
	Name     string    `json:"name"`
	Findings []Finding `json:"findings"`
}

// Score tallies findings by severity.
type Score struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// LintResult is the full structural lint report for one skill package.
type LintResult struct {
	Pass       bool          `json:"pass"`
	Checks     []CheckResult `json:"checks"`
	Score      Score         `json:"score"`
	DurationMS int64         `json:"duration_ms"`
}

// Lint runs every structural check (pattern scan, scope, structure,
// naming, unicode) against a skill's file set and its parsed manifest,
// returning an aggregate result. Manifest validation errors are folded
// in as their own check. existingNames feeds the naming/typosquat
// check; pass nil when no catalog context is available.
func Lint(files map[string][]byte, existingNames []string) LintResult {
	start := clockNow()

	var checks []CheckResult

	manifestBytes, hasManifest := files["manifest.yaml"]
	var m *manifest.Manifest
	if hasManifest {
		parsed, err := manifest.Parse(manifestBytes)
		if err != nil {
			checks = append(checks, CheckResult{
				Name: "manifest",
				Findings: []Finding{{
					Severity: SeverityError,
					Check:    "manifest/parse",
					Message:  err.Error(),
					File:     "manifest.yaml",
				}},
			})
		} else {
			m = parsed
			checks = append(checks, CheckResult{Name: "manifest", Findings: manifestFindings(m)})
		}
	}

	checks = append(checks, CheckResult{Name: "structure", Findings: StructureCheck(files)})
	checks = append(checks, CheckResult{Name: "pattern", Findings: Scan(files, DefaultRules())})

	if m != nil {
		checks = append(checks, CheckResult{Name: "naming", Findings: NamingCheck(m, existingNames)})
		checks = append(checks, CheckResult{Name: "scope", Findings: ScopeCheck(m, string(files["SKILL.md"]))})
	}

	for _, name := range ScannableFiles {
		content, ok := files[name]
		if !ok {
			continue
		}
		checks = append(checks, CheckResult{Name: "unicode:" + name, Findings: UnicodeCheck(name, string(content))})
	}

	var score Score
	pass := true
	for _, c := range checks {
		for _, f := range c.Findings {
			switch f.Severity {
			case SeverityError:
				score.Errors++
				pass = false
			case SeverityWarning:
				score.Warnings++
			case SeverityInfo:
				score.Infos++
			}
		}
	}

	return LintResult{
		Pass:       pass,
		Checks:     checks,
		Score:      score,
		DurationMS: time.Since(start).Milliseconds(),
	}
}

func manifestFindings(m *manifest.Manifest) []Finding {
	var findings []Finding
	for _, fe := range manifest.Validate(m) {
		sev := SeverityError
		if fe.Info {
			sev = SeverityInfo
		}
		findings = append(findings, Finding{
			Severity: sev,
			Check:    "manifest/" + fe.Field,
			Message:  fe.Message,
		})
	}
	return findings
}

// clockNow is a var so lint duration measurement can be stubbed in
// tests without sleeping.
var clockNow = time.Now
