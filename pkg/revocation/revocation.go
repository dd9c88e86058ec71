// Package revocation provides the signed revocation list: an append-only,
// authority-signed list of (name, version) pairs clients must refuse to
// install.
package revocation

import (
	"crypto/ed25519"
	"encoding/json"
	"sort"

	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/signing"
)

// Severity grades how serious a revocation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Entry is a single revoked (name, version) pair.
type Entry struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Reason    string   `json:"reason"`
	RevokedAt string   `json:"revoked_at"`
	Severity  Severity `json:"severity"`
}

// SignedList is the authority-signed revocation list.
type SignedList struct {
	Entries   []Entry `json:"entries"`
	Signature string  `json:"signature"`
}

func sortedEntries(entries []Entry) []Entry {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Version < sorted[j].Version
	})
	return sorted
}

// Build sorts entries by (name, version) and signs the canonical array.
func Build(entries []Entry, priv ed25519.PrivateKey) (*SignedList, error) {
	sorted := sortedEntries(entries)

	sm := signing.NewSignatureManager()
	signed, err := sm.SignObject(sorted, priv)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to sign revocation list", err)
	}

	return &SignedList{Entries: sorted, Signature: signed.Signature}, nil
}

// ParseSignedList decodes a SignedList from JSON bytes.
func ParseSignedList(data []byte) (*SignedList, error) {
	var list SignedList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to parse revocation list", err)
	}
	return &list, nil
}

// Verify checks the signature over the canonical entries array.
func Verify(list *SignedList, pub ed25519.PublicKey) bool {
	if list == nil {
		return false
	}
	sm := signing.NewSignatureManager()
	return sm.VerifyObject(list.Entries, list.Signature, pub)
}

// IsRevoked reports whether (name, version) is an exact match in list.
func IsRevoked(list *SignedList, name, version string) (Entry, bool) {
	if list == nil {
		return Entry{}, false
	}
	for _, e := range list.Entries {
		if e.Name == name && e.Version == version {
			return e, true
		}
	}
	return Entry{}, false
}

// InstalledSkill is the minimal shape check_installed needs from an
// install record.
type InstalledSkill struct {
	Name    string
	Version string
}

// Match pairs an installed skill with the revocation entry that hit it.
type Match struct {
	Installed InstalledSkill
	Entry     Entry
}

// CheckInstalled reports every installed skill matched by list. It never
// mutates installed state — purely a report.
func CheckInstalled(list *SignedList, installed []InstalledSkill) []Match {
	var matches []Match
	for _, s := range installed {
		if entry, ok := IsRevoked(list, s.Name, s.Version); ok {
			matches = append(matches, Match{Installed: s, Entry: entry})
		}
	}
	return matches
}
