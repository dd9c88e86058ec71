// Package catalog builds, verifies, incrementally updates, and queries
// the signed catalog index: the authoritative list of every published
// skill and its versions.
package catalog

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kithkit/kithkit/pkg/archive"
	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/manifest"
	"github.com/kithkit/kithkit/pkg/signing"
)

// SkillVersion is one published archive of a skill.
type SkillVersion struct {
	Version   string `json:"version"`
	Archive   string `json:"archive"`
	SHA256    string `json:"sha256"`
	Signature string `json:"signature"`
	Size      int64  `json:"size"`
	Published string `json:"published"`
}

// SkillEntry aggregates metadata and every published version of a skill.
type SkillEntry struct {
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Author       manifest.Author         `json:"author"`
	Capabilities manifest.Capabilities   `json:"capabilities"`
	Tags         []string                `json:"tags"`
	Category     string                  `json:"category"`
	TrustLevel   string                  `json:"trust_level"`
	Latest       string                  `json:"latest"`
	Versions     map[string]SkillVersion `json:"versions"`
}

// SignedIndex is the signed catalog index: the authoritative,
// Ed25519-signed list of every published skill and its versions.
type SignedIndex struct {
	Version   int          `json:"version"`
	Updated   string       `json:"updated"`
	Skills    []SkillEntry `json:"skills"`
	Signature string       `json:"signature"`
}

// indexBody is the part of SignedIndex that gets canonicalized and signed.
type indexBody struct {
	Version int          `json:"version"`
	Updated string       `json:"updated"`
	Skills  []SkillEntry `json:"skills"`
}

func (idx *SignedIndex) body() indexBody {
	return indexBody{Version: idx.Version, Updated: idx.Updated, Skills: idx.Skills}
}

// archiveRecord is one discovered {skill name, version} archive on disk.
type archiveRecord struct {
	skillName string
	version   SkillVersion
	m         *manifest.Manifest
}

// BuildIndex enumerates archivesDir's subdirectories (one per skill) in
// lexical order, signs every archive found, and returns a freshly signed
// index.
func BuildIndex(archivesDir string, priv ed25519.PrivateKey, timestamp time.Time) (*SignedIndex, error) {
	skillDirs, err := os.ReadDir(archivesDir)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to list archives directory", err)
	}

	names := make([]string, 0, len(skillDirs))
	for _, d := range skillDirs {
		if d.IsDir() {
			names = append(names, d.Name())
		}
	}
	sort.Strings(names)

	var entries []SkillEntry
	for _, name := range names {
		entry, err := buildSkillEntry(filepath.Join(archivesDir, name), priv, timestamp)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}

	return sign(entries, timestamp, priv)
}

// buildSkillEntry collates every *.tar.gz in skillDir into one SkillEntry.
func buildSkillEntry(skillDir string, priv ed25519.PrivateKey, published time.Time) (*SkillEntry, error) {
	files, err := os.ReadDir(skillDir)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.IO, fmt.Sprintf("failed to list %s", skillDir), err)
	}

	var records []archiveRecord
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".tar.gz") {
			continue
		}
		rec, err := recordForArchive(filepath.Join(skillDir, f.Name()), priv, published)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, nil
	}

	return collate(records), nil
}

// recordForArchive reads, hashes, and signs one archive. published is the
// SkillVersion.Published stamp: BuildIndex threads its timestamp
// parameter through so a given (archives, timestamp) pair always
// produces byte-identical output; UpdateIndex threads through the
// timestamp its own caller supplied.
func recordForArchive(path string, priv ed25519.PrivateKey, published time.Time) (archiveRecord, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path constructed from a trusted directory walk
	if err != nil {
		return archiveRecord{}, kiterr.Wrap(kiterr.IO, fmt.Sprintf("failed to read %s", path), err)
	}

	manifestBytes, err := archive.ExtractManifest(data)
	if err != nil {
		return archiveRecord{}, kiterr.Wrap(kiterr.Invalid, fmt.Sprintf("failed to extract manifest from %s", path), err)
	}
	m, err := manifest.Parse(manifestBytes)
	if err != nil {
		return archiveRecord{}, kiterr.Wrap(kiterr.Invalid, fmt.Sprintf("failed to parse manifest from %s", path), err)
	}

	digest := sha256.Sum256(data)
	sm := signing.NewSignatureManager()
	sig, err := sm.SignBytes(digest[:], priv)
	if err != nil {
		return archiveRecord{}, kiterr.Wrap(kiterr.Invalid, "failed to sign archive digest", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return archiveRecord{}, kiterr.Wrap(kiterr.IO, fmt.Sprintf("failed to stat %s", path), err)
	}

	return archiveRecord{
		skillName: m.Name,
		m:         m,
		version: SkillVersion{
			Version:   m.Version,
			Archive:   fmt.Sprintf("archives/%s/%s", m.Name, filepath.Base(path)),
			SHA256:    fmt.Sprintf("%x", digest),
			Signature: sig,
			Size:      info.Size(),
			Published: published.UTC().Format(time.RFC3339),
		},
	}, nil
}

// collate merges every archiveRecord for one skill into a SkillEntry,
// picking latest by lexical string maximum — intentionally not strict
// semver ordering.
func collate(records []archiveRecord) *SkillEntry {
	versions := make(map[string]SkillVersion, len(records))
	var latestRecord archiveRecord
	for i, r := range records {
		versions[r.version.Version] = r.version
		if i == 0 || r.version.Version > latestRecord.version.Version {
			latestRecord = r
		}
	}

	m := latestRecord.m
	return &SkillEntry{
		Name:         m.Name,
		Description:  m.Description,
		Author:       m.Author,
		Capabilities: m.SortedCapabilities(),
		Tags:         m.SortedTags(),
		Category:     m.Category,
		TrustLevel:   "community",
		Latest:       latestRecord.version.Version,
		Versions:     versions,
	}
}

func sign(entries []SkillEntry, timestamp time.Time, priv ed25519.PrivateKey) (*SignedIndex, error) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	idx := &SignedIndex{
		Version: 1,
		Updated: timestamp.UTC().Format(time.RFC3339),
		Skills:  entries,
	}

	sm := signing.NewSignatureManager()
	signed, err := sm.SignObject(idx.body(), priv)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Invalid, "failed to sign index", err)
	}
	idx.Signature = signed.Signature
	return idx, nil
}

// UpdateIndex locates the matching skill entry in existing (inserting a
// new entry if absent), inserts or replaces the version from archivePath,
// updates latest and skill-level metadata, re-sorts, and re-signs.
// Signatures on other versions' SkillVersion records are preserved
// verbatim since those are untouched map entries.
func UpdateIndex(existing *SignedIndex, archivePath string, priv ed25519.PrivateKey, timestamp time.Time) (*SignedIndex, error) {
	rec, err := recordForArchive(archivePath, priv, timestamp)
	if err != nil {
		return nil, err
	}

	entries := append([]SkillEntry(nil), existing.Skills...)
	idx := -1
	for i, e := range entries {
		if e.Name == rec.skillName {
			idx = i
			break
		}
	}

	if idx == -1 {
		fresh := collate([]archiveRecord{rec})
		entries = append(entries, *fresh)
	} else {
		updated := entries[idx]
		versions := make(map[string]SkillVersion, len(updated.Versions)+1)
		for k, v := range updated.Versions {
			versions[k] = v
		}
		versions[rec.version.Version] = rec.version

		if rec.version.Version > updated.Latest {
			updated.Latest = rec.version.Version
			updated.Description = rec.m.Description
			updated.Author = rec.m.Author
			updated.Capabilities = rec.m.SortedCapabilities()
			updated.Tags = rec.m.SortedTags()
			updated.Category = rec.m.Category
		}
		updated.Versions = versions
		entries[idx] = updated
	}

	return sign(entries, timestamp, priv)
}

// VerifyIndex strips the signature, canonicalizes the rest, and verifies
// it against pub.
func VerifyIndex(idx *SignedIndex, pub ed25519.PublicKey) bool {
	if idx == nil {
		return false
	}
	sm := signing.NewSignatureManager()
	return sm.VerifyObject(idx.body(), idx.Signature, pub)
}

// Filter selects which skills Search returns.
type Filter struct {
	Text       string
	Tag        string
	Capability string
}

// Projection is the latest-version view Search returns.
type Projection struct {
	Name         string
	Description  string
	Author       manifest.Author
	Capabilities manifest.Capabilities
	Tags         []string
	Category     string
	TrustLevel   string
	Latest       string
}

// Search filters index.Skills (already sorted by name) with AND-combined
// filters: text is a case-insensitive substring over name or description;
// tag and capability are exact membership checks.
func Search(idx *SignedIndex, f Filter) []Projection {
	var results []Projection
	for _, skill := range idx.Skills {
		if f.Text != "" && !matchesText(skill, f.Text) {
			continue
		}
		if f.Tag != "" && !containsString(skill.Tags, f.Tag) {
			continue
		}
		if f.Capability != "" && !hasCapability(skill, f.Capability) {
			continue
		}
		results = append(results, Projection{
			Name:         skill.Name,
			Description:  skill.Description,
			Author:       skill.Author,
			Capabilities: skill.Capabilities,
			Tags:         skill.Tags,
			Category:     skill.Category,
			TrustLevel:   skill.TrustLevel,
			Latest:       skill.Latest,
		})
	}
	return results
}

func matchesText(skill SkillEntry, text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(strings.ToLower(skill.Name), lower) ||
		strings.Contains(strings.ToLower(skill.Description), lower)
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func hasCapability(skill SkillEntry, capability string) bool {
	return containsString(skill.Capabilities.Required, capability) || containsString(skill.Capabilities.Optional, capability)
}
