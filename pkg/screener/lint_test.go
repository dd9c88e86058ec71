package screener

import "testing"

func validManifestYAML() []byte {
	return []byte(`name: weather-lookup
version: 1.0.0
description: Reports the current forecast for a city
author:
  name: Jane Doe
  github: janedoe
capabilities:
  required:
    - network
`)
}

func TestLint_CleanSkillPasses(t *testing.T) {
	files := map[string][]byte{
		"manifest.yaml": validManifestYAML(),
		"SKILL.md":      []byte("# Weather Lookup\n\nFetches the current forecast for a city.\n"),
	}
	result := Lint(files, nil)
	if !result.Pass {
		t.Errorf("Lint() = %+v, want pass", result)
	}
	if result.Score.Errors != 0 {
		t.Errorf("Score.Errors = %d, want 0", result.Score.Errors)
	}
}

func TestLint_MissingRequiredFileFailsOverall(t *testing.T) {
	files := map[string][]byte{
		"manifest.yaml": validManifestYAML(),
	}
	result := Lint(files, nil)
	if result.Pass {
		t.Error("Lint() pass = true, want false when SKILL.md is missing")
	}
	if result.Score.Errors == 0 {
		t.Error("Score.Errors = 0, want at least 1")
	}
}

func TestLint_InvalidManifestYAMLFailsAsParseError(t *testing.T) {
	files := map[string][]byte{
		"manifest.yaml": []byte("not: [valid yaml"),
		"SKILL.md":      []byte("# Broken\n"),
	}
	result := Lint(files, nil)
	if result.Pass {
		t.Error("Lint() pass = true, want false for unparseable manifest")
	}
}

func TestLint_BadManifestFieldSurfacesAsFinding(t *testing.T) {
	files := map[string][]byte{
		"manifest.yaml": []byte("name: Weather_Lookup\nversion: not-semver\n"),
		"SKILL.md":      []byte("# Weather\n"),
	}
	result := Lint(files, nil)
	if result.Pass {
		t.Error("Lint() pass = true, want false for invalid name/version")
	}

	var sawManifestCheck bool
	for _, c := range result.Checks {
		if c.Name == "manifest" && len(c.Findings) > 0 {
			sawManifestCheck = true
		}
	}
	if !sawManifestCheck {
		t.Errorf("expected manifest check findings, got %+v", result.Checks)
	}
}

func TestLint_DurationRecorded(t *testing.T) {
	files := map[string][]byte{
		"manifest.yaml": validManifestYAML(),
		"SKILL.md":      []byte("# Weather Lookup\n"),
	}
	result := Lint(files, nil)
	if result.DurationMS < 0 {
		t.Errorf("DurationMS = %d, want >= 0", result.DurationMS)
	}
}
