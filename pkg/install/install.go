// Package install implements the verified install state machine and the
// update/uninstall/list/check-for-update lifecycle operations that sit
// on top of it: LOCATE, REVOKE, FETCH, VERIFY, DEDUP, EXTRACT, META,
// run strictly in that order against a catalog index and revocation
// list.
package install

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kithkit/kithkit/pkg/archive"
	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/revocation"
	"github.com/kithkit/kithkit/pkg/source"
)

// MetadataFilename is the hidden sidecar written into every install
// directory.
const MetadataFilename = ".kithkit-install.json"

// ConfigFilename is the user-owned config file inside an install
// directory, preserved verbatim across updates and backed up on
// uninstall. Install itself does not create it.
const ConfigFilename = "config.yaml"

// Metadata is the per-installed-skill sidecar record.
type Metadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Source      string `json:"source"`
	SHA256      string `json:"sha256"`
	Signature   string `json:"signature"`
	InstalledAt string `json:"installed_at"`
	TrustLevel  string `json:"trust_level"`
}

// Options configures a single install/update call.
type Options struct {
	SkillsDir string
	Name      string
	Version   string // empty means the index's latest
	Index     *catalog.SignedIndex
	Revoked   *revocation.SignedList // nil skips the REVOKE step
	PublicKey ed25519.PublicKey
	Fetch     source.FetchFunc
	Timestamp time.Time
}

func (o Options) installDir() string {
	return filepath.Join(o.SkillsDir, o.Name)
}

func (o Options) configPath() string {
	return filepath.Join(o.installDir(), ConfigFilename)
}

func (o Options) metadataPath() string {
	return filepath.Join(o.installDir(), MetadataFilename)
}

// Install runs the LOCATE -> REVOKE -> FETCH -> VERIFY -> DEDUP ->
// EXTRACT -> META state machine strictly in that order. Every failure
// path leaves the filesystem either untouched or with only install_dir
// removed.
func Install(ctx context.Context, opts Options) (*Metadata, error) {
	// LOCATE
	entry, version, err := locate(opts.Index, opts.Name, opts.Version)
	if err != nil {
		return nil, err
	}

	// REVOKE
	if opts.Revoked != nil {
		if rev, hit := revocation.IsRevoked(opts.Revoked, opts.Name, version.Version); hit {
			return nil, kiterr.New(kiterr.Revoked, fmt.Sprintf("%s@%s revoked: %s (%s)", opts.Name, version.Version, rev.Reason, rev.Severity))
		}
	}

	// FETCH
	data, err := opts.Fetch(ctx, version.Archive)
	if err != nil {
		return nil, kiterr.Wrap(kiterr.Fetch, fmt.Sprintf("failed to fetch %s", version.Archive), err)
	}

	// VERIFY
	digest := sha256.Sum256(data)
	gotSHA := fmt.Sprintf("%x", digest)
	if gotSHA != version.SHA256 {
		return nil, kiterr.New(kiterr.Integrity, fmt.Sprintf("sha256 mismatch for %s", opts.Name))
	}
	sigBytes, err := base64.StdEncoding.DecodeString(version.Signature)
	if err != nil || !ed25519.Verify(opts.PublicKey, digest[:], sigBytes) {
		return nil, kiterr.New(kiterr.Integrity, fmt.Sprintf("signature verification failed for %s", opts.Name))
	}

	// DEDUP
	if existing, err := readMetadata(opts.metadataPath()); err == nil && existing.Version == version.Version {
		return nil, kiterr.New(kiterr.AlreadyInstalled, fmt.Sprintf("%s@%s already installed", opts.Name, version.Version))
	}

	// EXTRACT
	installDir := opts.installDir()
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to create install directory", err)
	}
	if err := archive.SafeExtract(data, installDir); err != nil {
		os.RemoveAll(installDir)
		return nil, err
	}

	// META
	meta := &Metadata{
		Name:        entry.Name,
		Version:     version.Version,
		Source:      version.Archive,
		SHA256:      version.SHA256,
		Signature:   version.Signature,
		InstalledAt: opts.Timestamp.UTC().Format(time.RFC3339),
		TrustLevel:  entry.TrustLevel,
	}
	if err := writeMetadata(opts.metadataPath(), meta); err != nil {
		os.RemoveAll(installDir)
		return nil, err
	}

	return meta, nil
}

func locate(idx *catalog.SignedIndex, name, version string) (catalog.SkillEntry, catalog.SkillVersion, error) {
	if idx == nil {
		return catalog.SkillEntry{}, catalog.SkillVersion{}, kiterr.New(kiterr.NotFound, fmt.Sprintf("%s not found: no index", name))
	}
	for _, entry := range idx.Skills {
		if entry.Name != name {
			continue
		}
		wantVersion := version
		if wantVersion == "" {
			wantVersion = entry.Latest
		}
		v, ok := entry.Versions[wantVersion]
		if !ok {
			return catalog.SkillEntry{}, catalog.SkillVersion{}, kiterr.New(kiterr.NotFound, fmt.Sprintf("%s@%s not found in index", name, wantVersion))
		}
		return entry, v, nil
	}
	return catalog.SkillEntry{}, catalog.SkillVersion{}, kiterr.New(kiterr.NotFound, fmt.Sprintf("%s not found in index", name))
}

// Result carries the outcome of Update: whether it actually changed
// anything, and the version now installed.
type Result struct {
	Updated         bool
	PreviousVersion string
	CurrentVersion  string
}

// Update fails NotInstalled if the skill has no install metadata. It then
// runs CheckForUpdate; if nothing newer is available it returns a
// non-success Result rather than an error. Otherwise it preserves any
// existing config file's raw bytes, removes the install directory, runs
// Install, and restores the config bytes verbatim.
func Update(ctx context.Context, opts Options) (*Result, error) {
	status, err := CheckForUpdate(opts.SkillsDir, opts.Name, opts.Index)
	if err != nil {
		return nil, err
	}
	if status.InstalledVersion == "" {
		return nil, kiterr.New(kiterr.NotInstalled, fmt.Sprintf("%s is not installed", opts.Name))
	}
	if !status.HasUpdate {
		return &Result{Updated: false, PreviousVersion: status.InstalledVersion, CurrentVersion: status.InstalledVersion}, nil
	}

	var preservedConfig []byte
	if data, err := os.ReadFile(opts.configPath()); err == nil {
		preservedConfig = data
	}

	installDir := opts.installDir()
	if err := os.RemoveAll(installDir); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to remove existing install directory", err)
	}

	meta, err := Install(ctx, opts)
	if err != nil {
		return nil, err
	}

	if preservedConfig != nil {
		if err := os.WriteFile(opts.configPath(), preservedConfig, 0o600); err != nil {
			return nil, kiterr.Wrap(kiterr.IO, "failed to restore preserved config", err)
		}
	}

	return &Result{Updated: true, PreviousVersion: status.InstalledVersion, CurrentVersion: meta.Version}, nil
}

// UninstallResult reports whether a config backup was written.
type UninstallResult struct {
	ConfigBackedUp bool
	BackupPath     string
}

// Uninstall backs up any config file to
// {skills_dir}/.backups/{name}/config.bak, then recursively removes the
// install directory. Fails NotInstalled if the directory has no metadata.
func Uninstall(skillsDir, name string) (*UninstallResult, error) {
	installDir := filepath.Join(skillsDir, name)
	metaPath := filepath.Join(installDir, MetadataFilename)
	if _, err := readMetadata(metaPath); err != nil {
		return nil, kiterr.New(kiterr.NotInstalled, fmt.Sprintf("%s is not installed", name))
	}

	result := &UninstallResult{}
	configPath := filepath.Join(installDir, ConfigFilename)
	if data, err := os.ReadFile(configPath); err == nil {
		backupDir := filepath.Join(skillsDir, ".backups", name)
		if err := os.MkdirAll(backupDir, 0o755); err != nil {
			return nil, kiterr.Wrap(kiterr.IO, "failed to create backup directory", err)
		}
		backupPath := filepath.Join(backupDir, "config.bak")
		if err := os.WriteFile(backupPath, data, 0o600); err != nil {
			return nil, kiterr.Wrap(kiterr.IO, "failed to back up config", err)
		}
		result.ConfigBackedUp = true
		result.BackupPath = backupPath
	}

	if err := os.RemoveAll(installDir); err != nil {
		return nil, kiterr.Wrap(kiterr.IO, "failed to remove install directory", err)
	}
	return result, nil
}

// RestoreBackup returns the backed-up config bytes for name, or nil if
// none exists.
func RestoreBackup(skillsDir, name string) ([]byte, error) {
	path := filepath.Join(skillsDir, ".backups", name, "config.bak")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kiterr.Wrap(kiterr.IO, "failed to read config backup", err)
	}
	return data, nil
}

// Installed describes one entry returned by List.
type Installed struct {
	Metadata
	HasUpdate     bool
	LatestVersion string
}

// List enumerates non-hidden subdirectories of skillsDir with readable
// install metadata. If idx is non-nil, each entry is annotated with
// has_update/latest_version via CheckForUpdate.
func List(skillsDir string, idx *catalog.SignedIndex) ([]Installed, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kiterr.Wrap(kiterr.IO, "failed to list skills directory", err)
	}

	var result []Installed
	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) == 0 || e.Name()[0] == '.' {
			continue
		}
		meta, err := readMetadata(filepath.Join(skillsDir, e.Name(), MetadataFilename))
		if err != nil {
			continue
		}
		item := Installed{Metadata: *meta}
		if idx != nil {
			status, err := CheckForUpdate(skillsDir, e.Name(), idx)
			if err == nil {
				item.HasUpdate = status.HasUpdate
				item.LatestVersion = status.LatestVersion
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// UpdateStatus is CheckForUpdate's small report.
type UpdateStatus struct {
	Name             string
	InstalledVersion string
	LatestVersion    string
	HasUpdate        bool
}

// CheckForUpdate compares the installed metadata's version against the
// index entry's latest. Marks has_update=false whenever the skill is not
// installed or not present in the index, never an error in those cases.
func CheckForUpdate(skillsDir, name string, idx *catalog.SignedIndex) (*UpdateStatus, error) {
	status := &UpdateStatus{Name: name}

	meta, err := readMetadata(filepath.Join(skillsDir, name, MetadataFilename))
	if err != nil {
		return status, nil
	}
	status.InstalledVersion = meta.Version

	if idx == nil {
		return status, nil
	}
	for _, entry := range idx.Skills {
		if entry.Name == name {
			status.LatestVersion = entry.Latest
			status.HasUpdate = entry.Latest != meta.Version
			break
		}
	}
	return status, nil
}

func readMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeMetadata(path string, meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return kiterr.Wrap(kiterr.Invalid, "failed to marshal install metadata", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return kiterr.Wrap(kiterr.IO, "failed to write install metadata", err)
	}
	return nil
}
