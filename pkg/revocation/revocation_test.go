package revocation

import (
	"crypto/ed25519"
	"testing"

	"github.com/kithkit/kithkit/pkg/signing"
)

func genKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	km := signing.NewKeyManager()
	pub, priv, err := km.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	return pub, priv
}

func TestBuild_SortsEntries(t *testing.T) {
	_, priv := genKeys(t)

	list, err := Build([]Entry{
		{Name: "zeta", Version: "1.0.0", Severity: SeverityLow},
		{Name: "alpha", Version: "2.0.0", Severity: SeverityHigh},
		{Name: "alpha", Version: "1.0.0", Severity: SeverityCritical},
	}, priv)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []struct{ name, version string }{
		{"alpha", "1.0.0"},
		{"alpha", "2.0.0"},
		{"zeta", "1.0.0"},
	}
	if len(list.Entries) != len(want) {
		t.Fatalf("len(Entries) = %d, want %d", len(list.Entries), len(want))
	}
	for i, w := range want {
		if list.Entries[i].Name != w.name || list.Entries[i].Version != w.version {
			t.Errorf("Entries[%d] = (%s, %s), want (%s, %s)", i, list.Entries[i].Name, list.Entries[i].Version, w.name, w.version)
		}
	}
}

func TestVerify(t *testing.T) {
	pub, priv := genKeys(t)

	list, err := Build([]Entry{
		{Name: "malicious-skill", Version: "1.0.0", Reason: "exfiltrates credentials", Severity: SeverityCritical},
	}, priv)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !Verify(list, pub) {
		t.Errorf("Verify() = false, want true")
	}

	list.Entries[0].Reason = "tampered"
	if Verify(list, pub) {
		t.Errorf("Verify() = true after tamper, want false")
	}
}

func TestIsRevoked(t *testing.T) {
	_, priv := genKeys(t)
	list, err := Build([]Entry{
		{Name: "malicious-skill", Version: "1.0.0", Reason: "key compromise", Severity: SeverityCritical},
	}, priv)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	entry, ok := IsRevoked(list, "malicious-skill", "1.0.0")
	if !ok {
		t.Fatalf("IsRevoked() = false, want true")
	}
	if entry.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical", entry.Severity)
	}

	if _, ok := IsRevoked(list, "malicious-skill", "2.0.0"); ok {
		t.Errorf("IsRevoked() = true for different version, want false")
	}
	if _, ok := IsRevoked(list, "other-skill", "1.0.0"); ok {
		t.Errorf("IsRevoked() = true for different name, want false")
	}
}

func TestCheckInstalled_NeverMutates(t *testing.T) {
	_, priv := genKeys(t)
	list, err := Build([]Entry{
		{Name: "malicious-skill", Version: "1.0.0", Severity: SeverityCritical},
	}, priv)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	installed := []InstalledSkill{
		{Name: "malicious-skill", Version: "1.0.0"},
		{Name: "safe-skill", Version: "1.0.0"},
	}

	matches := CheckInstalled(list, installed)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Installed.Name != "malicious-skill" {
		t.Errorf("matched skill = %s, want malicious-skill", matches[0].Installed.Name)
	}

	// installed slice itself is untouched
	if len(installed) != 2 {
		t.Errorf("installed slice mutated, len = %d, want 2", len(installed))
	}
}
