package screener

import (
	"fmt"

	"github.com/kithkit/kithkit/pkg/manifest"
)

// reservedNames may never be used as a skill name: they shadow
// registry-internal or platform-reserved identifiers.
var reservedNames = map[string]bool{
	"kithkit": true, "catalog": true, "index": true, "admin": true,
	"system": true, "root": true, "registry": true, "revocation": true,
}

// typosquatDistance is the maximum Levenshtein distance from an existing
// catalog name that triggers a typosquat warning.
const typosquatDistance = 2

// NamingCheck validates a manifest's name against reserved identifiers
// and warns when it sits suspiciously close, by edit distance, to an
// already-published name.
func NamingCheck(m *manifest.Manifest, existingNames []string) []Finding {
	if m == nil || m.Name == "" {
		return nil
	}

	var findings []Finding

	if reservedNames[m.Name] {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Check:    "naming/reserved",
			Message:  fmt.Sprintf("%q is a reserved name", m.Name),
		})
	}

	for _, existing := range existingNames {
		if existing == m.Name {
			continue
		}
		if d := levenshtein(m.Name, existing); d > 0 && d <= typosquatDistance {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Check:    "naming/typosquat",
				Message:  fmt.Sprintf("%q is %d edit(s) from existing skill %q", m.Name, d, existing),
			})
		}
	}

	return findings
}
