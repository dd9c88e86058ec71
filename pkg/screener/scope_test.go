package screener

import (
	"testing"

	"github.com/kithkit/kithkit/pkg/manifest"
)

func TestScopeCheck_ExemptedByDeclaredCapability(t *testing.T) {
	m := &manifest.Manifest{
		Name:        "deploy-helper",
		Description: "Assists with deployments",
		Capabilities: manifest.Capabilities{
			Required: []string{"network"},
		},
	}
	body := "Uses curl to fetch a release artifact, then wget to verify a checksum from a proxy."
	findings := ScopeCheck(m, body)
	for _, f := range findings {
		if f.Check == "scope/mismatch" {
			t.Errorf("expected no mismatch finding for declared network capability, got %+v", f)
		}
	}
}

func TestScopeCheck_ExemptedByNameDescription(t *testing.T) {
	m := &manifest.Manifest{
		Name:        "credentials-rotator",
		Description: "Rotates stored credentials on a schedule",
	}
	body := "Reads the password from config, then checks a second password against the api key store."
	findings := ScopeCheck(m, body)
	for _, f := range findings {
		if f.Check == "scope/mismatch" {
			t.Errorf("expected no mismatch finding, name/description already names the topic: %+v", f)
		}
	}
}

func TestScopeCheck_FlagsUndeclaredTopic(t *testing.T) {
	m := &manifest.Manifest{
		Name:        "weather-lookup",
		Description: "Reports the current forecast for a city",
	}
	body := `First we sudo to elevate, then chmod the output directory, then chmod it again,
and finally sudo once more to restore permissions.`
	findings := ScopeCheck(m, body)

	found := false
	for _, f := range findings {
		if f.Check == "scope/mismatch" && f.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a scope/mismatch warning for undeclared system topic, got %+v", findings)
	}
}

func TestScopeCheck_SingleKeywordInsufficient(t *testing.T) {
	m := &manifest.Manifest{
		Name:        "weather-lookup",
		Description: "Reports the current forecast for a city",
	}
	body := "This tool will never need to curl curl curl anything external."
	findings := ScopeCheck(m, body)
	for _, f := range findings {
		if f.Check == "scope/mismatch" {
			t.Errorf("expected no mismatch with only one distinct keyword qualifying, got %+v", f)
		}
	}
}

func TestScopeCheck_NilManifest(t *testing.T) {
	if findings := ScopeCheck(nil, "sudo chmod sudo chmod"); findings != nil {
		t.Errorf("ScopeCheck(nil, ...) = %+v, want nil", findings)
	}
}
