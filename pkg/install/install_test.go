package install

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kithkit/kithkit/pkg/archive"
	"github.com/kithkit/kithkit/pkg/catalog"
	"github.com/kithkit/kithkit/pkg/kiterr"
	"github.com/kithkit/kithkit/pkg/revocation"
	"github.com/kithkit/kithkit/pkg/signing"
)

func sha256sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func hexString(data []byte) string {
	return hex.EncodeToString(data)
}

func base64String(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func genKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	km := signing.NewKeyManager()
	pub, priv, err := km.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	return pub, priv
}

// buildCatalog writes one archive to disk and builds a signed index over
// it, returning the index and a fetch func that serves that archive's
// bytes keyed by its Archive path.
func buildCatalog(t *testing.T, priv ed25519.PrivateKey, name, version string) (*catalog.SignedIndex, func(context.Context, string) ([]byte, error)) {
	t.Helper()
	archivesDir := t.TempDir()
	skillDir := filepath.Join(archivesDir, name)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	manifestYAML := "name: " + name + "\nversion: " + version + "\ndescription: a test skill\nauthor:\n  name: tester\n  github: tester\ncapabilities:\n  required: []\n"
	data, err := archive.Build(name, map[string][]byte{
		"manifest.yaml": []byte(manifestYAML),
		"SKILL.md":      []byte("# " + name + "\n"),
	})
	if err != nil {
		t.Fatalf("archive.Build() error = %v", err)
	}

	archivePath := filepath.Join(skillDir, name+"-"+version+".tar.gz")
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	idx, err := catalog.BuildIndex(archivesDir, priv, time.Now())
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	fetch := func(_ context.Context, url string) ([]byte, error) {
		for _, skill := range idx.Skills {
			for _, v := range skill.Versions {
				if v.Archive == url {
					return data, nil
				}
			}
		}
		return nil, os.ErrNotExist
	}

	return idx, fetch
}

func TestInstall_HappyPath(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	meta, err := Install(context.Background(), Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if meta.Version != "1.0.0" {
		t.Errorf("Version = %s, want 1.0.0", meta.Version)
	}

	if _, err := os.Stat(filepath.Join(skillsDir, "weather-check", "SKILL.md")); err != nil {
		t.Errorf("extracted file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(skillsDir, "weather-check", MetadataFilename)); err != nil {
		t.Errorf("metadata sidecar missing: %v", err)
	}
}

func TestInstall_NotFound(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")

	_, err := Install(context.Background(), Options{
		SkillsDir: t.TempDir(),
		Name:      "does-not-exist",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	})
	if !kiterr.Is(err, kiterr.NotFound) {
		t.Errorf("Install() error = %v, want kiterr.NotFound", err)
	}
}

func TestInstall_Revoked(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")

	revList, err := revocation.Build([]revocation.Entry{
		{Name: "weather-check", Version: "1.0.0", Severity: revocation.SeverityCritical, Reason: "exfiltrates credentials"},
	}, priv)
	if err != nil {
		t.Fatalf("revocation.Build() error = %v", err)
	}

	_, err = Install(context.Background(), Options{
		SkillsDir: t.TempDir(),
		Name:      "weather-check",
		Index:     idx,
		Revoked:   revList,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	})
	if !kiterr.Is(err, kiterr.Revoked) {
		t.Errorf("Install() error = %v, want kiterr.Revoked", err)
	}
}

func TestInstall_IntegrityFailureOnBadSignature(t *testing.T) {
	_, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	otherPub, _ := genKeys(t)

	_, err := Install(context.Background(), Options{
		SkillsDir: t.TempDir(),
		Name:      "weather-check",
		Index:     idx,
		PublicKey: otherPub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	})
	if !kiterr.Is(err, kiterr.Integrity) {
		t.Errorf("Install() error = %v, want kiterr.Integrity", err)
	}
}

func TestInstall_DedupAlreadyInstalled(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	opts := Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	}

	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("first Install() error = %v", err)
	}
	_, err := Install(context.Background(), opts)
	if !kiterr.Is(err, kiterr.AlreadyInstalled) {
		t.Errorf("second Install() error = %v, want kiterr.AlreadyInstalled", err)
	}
}

func TestInstall_ExtractFailureRemovesInstallDir(t *testing.T) {
	pub, priv := genKeys(t)
	idx, _ := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	badFetch := func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not a valid gzip archive"), nil
	}

	// Point at a manually computed sha256/signature over the bad bytes so
	// VERIFY passes and EXTRACT is what fails.
	entry := idx.Skills[0]
	version := entry.Versions[entry.Latest]
	digest := sha256sum([]byte("not a valid gzip archive"))
	sig := ed25519.Sign(priv, digest)
	version.SHA256 = hexString(digest)
	version.Signature = base64String(sig)
	entry.Versions[entry.Latest] = version
	idx.Skills[0] = entry

	_, err := Install(context.Background(), Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     badFetch,
		Timestamp: time.Now(),
	})
	if !kiterr.Is(err, kiterr.Extract) {
		t.Fatalf("Install() error = %v, want kiterr.Extract", err)
	}
	if _, statErr := os.Stat(filepath.Join(skillsDir, "weather-check")); statErr == nil {
		t.Errorf("install directory was not removed after extract failure")
	}
}

func TestUpdate_NoNewerVersion(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	opts := Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	}
	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	result, err := Update(context.Background(), opts)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if result.Updated {
		t.Errorf("Update() Updated = true, want false when no newer version exists")
	}
}

func TestUpdate_PreservesConfig(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	opts := Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	}
	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	configPath := filepath.Join(skillsDir, "weather-check", ConfigFilename)
	if err := os.WriteFile(configPath, []byte("api_key: secret\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	idx2, fetch2 := buildCatalog(t, priv, "weather-check", "2.0.0")
	opts2 := opts
	opts2.Index = idx2
	opts2.Fetch = fetch2

	result, err := Update(context.Background(), opts2)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !result.Updated || result.CurrentVersion != "2.0.0" {
		t.Fatalf("Update() = %+v, want Updated=true CurrentVersion=2.0.0", result)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "api_key: secret\n" {
		t.Errorf("config not preserved: %q", data)
	}
}

func TestUninstall_BacksUpConfig(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	opts := Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	}
	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	configPath := filepath.Join(skillsDir, "weather-check", ConfigFilename)
	if err := os.WriteFile(configPath, []byte("api_key: secret\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	result, err := Uninstall(skillsDir, "weather-check")
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if !result.ConfigBackedUp {
		t.Errorf("ConfigBackedUp = false, want true")
	}

	if _, err := os.Stat(filepath.Join(skillsDir, "weather-check")); !os.IsNotExist(err) {
		t.Errorf("install directory still exists after uninstall")
	}

	backup, err := RestoreBackup(skillsDir, "weather-check")
	if err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}
	if string(backup) != "api_key: secret\n" {
		t.Errorf("RestoreBackup() = %q, want %q", backup, "api_key: secret\n")
	}
}

func TestUninstall_NotInstalled(t *testing.T) {
	_, err := Uninstall(t.TempDir(), "nonexistent")
	if !kiterr.Is(err, kiterr.NotInstalled) {
		t.Errorf("Uninstall() error = %v, want kiterr.NotInstalled", err)
	}
}

func TestList_IncludesUpdateStatus(t *testing.T) {
	pub, priv := genKeys(t)
	idx, fetch := buildCatalog(t, priv, "weather-check", "1.0.0")
	skillsDir := t.TempDir()

	opts := Options{
		SkillsDir: skillsDir,
		Name:      "weather-check",
		Index:     idx,
		PublicKey: pub,
		Fetch:     fetch,
		Timestamp: time.Now(),
	}
	if _, err := Install(context.Background(), opts); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	idx2, _ := buildCatalog(t, priv, "weather-check", "2.0.0")

	list, err := List(skillsDir, idx2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if !list[0].HasUpdate || list[0].LatestVersion != "2.0.0" {
		t.Errorf("list[0] = %+v, want HasUpdate=true LatestVersion=2.0.0", list[0])
	}
}

func TestCheckForUpdate_NotInstalled(t *testing.T) {
	_, priv := genKeys(t)
	idx, _ := buildCatalog(t, priv, "weather-check", "1.0.0")

	status, err := CheckForUpdate(t.TempDir(), "weather-check", idx)
	if err != nil {
		t.Fatalf("CheckForUpdate() error = %v", err)
	}
	if status.HasUpdate {
		t.Errorf("HasUpdate = true for uninstalled skill, want false")
	}
}
