package screener

import (
	"regexp"
	"strings"

	"github.com/kithkit/kithkit/pkg/manifest"
)

// Detector produces review-level findings from a skill's files and
// manifest. RunSelftest exercises any Detector; PatternDetector is the
// reference implementation shipped with the registry.
type Detector interface {
	Detect(files map[string][]byte, m *manifest.Manifest) []ReviewFinding
}

type detectorPattern struct {
	re          *regexp.Regexp
	description string
}

var detectorFamilies = map[RubricCategory][]detectorPattern{
	CategoryCredentialAccess: {
		{regexp.MustCompile(`(?i)\b(password|passwd)\b\s*[:=]`), "requests or reads a password"},
		{regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|secret[_-]?key)\b\s*[:=]`), "references an API key or access token"},
		{regexp.MustCompile(`(?i)(id_rsa|id_ed25519|\.ssh/[a-z_]+)\b`), "references an SSH private key"},
		{regexp.MustCompile(`(?i)\b(keychain|credential manager|wallet\.dat)\b`), "references an OS credential store"},
	},
	CategoryDataExfiltration: {
		{regexp.MustCompile(`(?i)curl\s+[^\n]*\$\([^)]+\)`), "shells out to curl with a command substitution payload"},
		{regexp.MustCompile(`(?i)\b(curl|wget)\b[^\n]*-X\s*POST[^\n]*https?://`), "posts data to an external host"},
		{regexp.MustCompile(`(?i)base64[^\n]*\|\s*(curl|nc|ncat)\b`), "base64-encodes output before sending it elsewhere"},
	},
	CategorySecurityModifier: {
		{regexp.MustCompile(`(?i)\b(disable|stop)\b[^\n]*\b(firewall|selinux|apparmor)\b`), "disables a security control"},
		{regexp.MustCompile(`(?i)\biptables\b[^\n]*-F\b`), "flushes firewall rules"},
		{regexp.MustCompile(`(?i)\bvisudo\b|/etc/sudoers\b`), "edits the sudoers file"},
	},
	CategoryPermissionEscalate: {
		{regexp.MustCompile(`(?i)\bsudo\b`), "invokes sudo"},
		{regexp.MustCompile(`(?i)chmod\s+(-R\s+)?777\b`), "grants world-writable permissions"},
		{regexp.MustCompile(`(?i)\bsetuid\b|\bsuid\b`), "sets the setuid bit"},
	},
	CategoryInstructionHiding: {
		{regexp.MustCompile(`(?i)ignore (all )?(previous|prior|above) instructions`), "attempts to override prior instructions"},
		{regexp.MustCompile(`(?i)you are now (in )?(developer|system|admin) mode`), "claims elevated system authority"},
		{regexp.MustCompile(`(?i)do not (tell|mention|reveal) (this|the user)`), "instructs the agent to hide something from the user"},
	},
}

// PatternDetector is the reference Detector: keyword/regex family
// matching plus a scope-mismatch pass over the manifest.
type PatternDetector struct{}

// Detect scans the combined content of a skill's scannable files for
// each rubric category's pattern family and folds in ScopeCheck's
// mismatch findings. Confidence is "high" when two or more patterns of
// a family hit, "medium" for a single hit, "low" is reserved for
// inference-only findings.
func (PatternDetector) Detect(files map[string][]byte, m *manifest.Manifest) []ReviewFinding {
	var combined strings.Builder
	for _, name := range ScannableFiles {
		if content, ok := files[name]; ok {
			combined.Write(content)
			combined.WriteByte('\n')
		}
	}
	// Normalized the same way scanner.go's multiline pass is, so a
	// pattern split across lines by the author (or an evasion attempt)
	// still matches a [^\n]*-style regex.
	text := normalizeWhitespace(combined.String())

	var findings []ReviewFinding
	for category, patterns := range detectorFamilies {
		hits := 0
		var firstLoc []int
		var firstDescription string
		for _, p := range patterns {
			loc := p.re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			hits++
			if firstLoc == nil {
				firstLoc = loc
				firstDescription = p.description
			}
		}
		if hits == 0 {
			continue
		}
		confidence := "medium"
		if hits >= 2 {
			confidence = "high"
		}
		findings = append(findings, ReviewFinding{
			Category:    category,
			Severity:    DefaultRubric[category],
			Description: firstDescription,
			Evidence:    evidenceSnippet(text, firstLoc, 120),
			Confidence:  confidence,
		})
	}

	if m != nil {
		for _, f := range ScopeCheck(m, string(files["SKILL.md"])) {
			findings = append(findings, ReviewFinding{
				Category:    CategoryScopeMismatch,
				Severity:    DefaultRubric[CategoryScopeMismatch],
				Description: f.Message,
				Evidence:    truncate(f.Message, 120),
				Confidence:  "low",
			})
		}
	}

	return findings
}
