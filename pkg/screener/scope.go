package screener

import (
	"strings"

	"github.com/kithkit/kithkit/pkg/manifest"
)

// topicKeywords maps a topic name to the keywords that count as evidence
// the skill's body text discusses it. Declared capabilities or the
// name/description mentioning the topic word exempt the skill from a
// mismatch finding.
var topicKeywords = map[string][]string{
	"credentials": {"password", "credential", "token", "api key", "ssh key", "keychain"},
	"system":      {"sudo", "chmod", "rm -rf", "kill -9", "/etc/passwd", "registry"},
	"network":     {"curl", "wget", "socket", "proxy", "firewall"},
}

// ScopeCheck flags topics a skill's SKILL.md body discusses heavily
// without declaring a related capability or naming the topic in its own
// name/description — a sign the skill does more than it claims.
func ScopeCheck(m *manifest.Manifest, skillMD string) []Finding {
	if m == nil {
		return nil
	}
	lower := strings.ToLower(skillMD)
	nameAndDesc := strings.ToLower(m.Name + " " + m.Description)
	declared := strings.ToLower(strings.Join(append(append([]string{}, m.Capabilities.Required...), m.Capabilities.Optional...), " "))

	var findings []Finding
	for topic, keywords := range topicKeywords {
		if strings.Contains(nameAndDesc, topic) || strings.Contains(declared, topic) {
			continue
		}

		distinctHits := 0
		for _, kw := range keywords {
			if strings.Count(lower, kw) >= 2 {
				distinctHits++
			}
		}
		if distinctHits >= 2 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Check:    "scope/mismatch",
				Message:  "SKILL.md discusses " + topic + " extensively but no declared capability or name/description mentions it",
			})
		}
	}
	return findings
}
