// Package manifest defines the Manifest entity authored per skill version
// and its structural validator. Manifests are written in YAML
// (manifest.yaml) and parsed with gopkg.in/yaml.v3.
package manifest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// semverPattern is a pragmatic strict-semver check: MAJOR.MINOR.PATCH
// with optional -prerelease and +build metadata.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z-.]+)?(\+[0-9A-Za-z-.]+)?$`)

// ConfigType enumerates the allowed types for a config field.
type ConfigType string

const (
	ConfigTypeCredential ConfigType = "credential"
	ConfigTypeString     ConfigType = "string"
	ConfigTypeNumber     ConfigType = "number"
	ConfigTypeBoolean    ConfigType = "boolean"
	ConfigTypeEnum       ConfigType = "enum"
)

// Author identifies the skill's author.
type Author struct {
	Name   string `yaml:"name" json:"name"`
	GitHub string `yaml:"github" json:"github"`
}

// ConfigField describes one entry in the manifest's ordered config list.
type ConfigField struct {
	Key         string      `yaml:"key" json:"key"`
	Type        ConfigType  `yaml:"type" json:"type"`
	Required    bool        `yaml:"required" json:"required"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Description string      `yaml:"description" json:"description"`
	EnumValues  []string    `yaml:"enum_values,omitempty" json:"enum_values,omitempty"`
}

// Capabilities declares what a skill needs to run.
type Capabilities struct {
	Required []string `yaml:"required" json:"required"`
	Optional []string `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Frameworks carries optional metadata about tested agent frameworks.
type Frameworks struct {
	Tested []string `yaml:"tested,omitempty" json:"tested,omitempty"`
}

// Manifest is the immutable descriptor authored per skill version.
type Manifest struct {
	Name         string        `yaml:"name" json:"name"`
	Version      string        `yaml:"version" json:"version"`
	Description  string        `yaml:"description" json:"description"`
	Author       Author        `yaml:"author" json:"author"`
	Capabilities Capabilities  `yaml:"capabilities" json:"capabilities"`
	Config       []ConfigField `yaml:"config,omitempty" json:"config,omitempty"`
	Tags         []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Category     string        `yaml:"category,omitempty" json:"category,omitempty"`
	Frameworks   *Frameworks   `yaml:"frameworks,omitempty" json:"frameworks,omitempty"`

	// TrustLevel is catalog-assigned. If an author submission sets it,
	// Validate emits an info finding and Parse does not clear it (the
	// catalog build step is responsible for overwriting it); this keeps
	// Parse a pure deserializer.
	TrustLevel string `yaml:"trust_level,omitempty" json:"trust_level,omitempty"`
}

// Parse decodes manifest.yaml bytes into a Manifest. It does not validate;
// call Validate separately to collect structured findings.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: failed to parse YAML: %w", err)
	}
	return &m, nil
}

// FieldError is a structured, per-field validation failure.
type FieldError struct {
	Field   string
	Message string
	Info    bool // true for informational findings (e.g. author-supplied trust_level)
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the manifest's required fields, name/version/config
// shape, and returns one FieldError per violation. An empty slice means
// the manifest is structurally valid.
func Validate(m *Manifest) []FieldError {
	var errs []FieldError

	if m.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "missing required field"})
	} else {
		if len(m.Name) < 2 || len(m.Name) > 64 {
			errs = append(errs, FieldError{Field: "name", Message: "must be 2-64 characters"})
		}
		if !namePattern.MatchString(m.Name) {
			errs = append(errs, FieldError{Field: "name", Message: fmt.Sprintf("must match %s", namePattern.String())})
		}
	}

	if m.Version == "" {
		errs = append(errs, FieldError{Field: "version", Message: "missing required field"})
	} else if !semverPattern.MatchString(m.Version) {
		errs = append(errs, FieldError{Field: "version", Message: "must be strict semver"})
	}

	if strings.TrimSpace(m.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "must be non-empty"})
	}

	if strings.TrimSpace(m.Author.Name) == "" {
		errs = append(errs, FieldError{Field: "author.name", Message: "must be non-empty"})
	}
	if strings.TrimSpace(m.Author.GitHub) == "" {
		errs = append(errs, FieldError{Field: "author.github", Message: "must be non-empty"})
	}

	for i, cf := range m.Config {
		prefix := fmt.Sprintf("config[%d]", i)
		switch cf.Type {
		case ConfigTypeCredential, ConfigTypeString, ConfigTypeNumber, ConfigTypeBoolean:
			// valid, no extra constraints
		case ConfigTypeEnum:
			if len(cf.EnumValues) == 0 {
				errs = append(errs, FieldError{Field: prefix + ".enum_values", Message: "required and must be non-empty for type enum"})
			}
		default:
			errs = append(errs, FieldError{Field: prefix + ".type", Message: fmt.Sprintf("unknown config type %q", cf.Type)})
		}
		if cf.Key == "" {
			errs = append(errs, FieldError{Field: prefix + ".key", Message: "missing required field"})
		}
	}

	if m.TrustLevel != "" {
		errs = append(errs, FieldError{"trust_level", "ignored in author submissions; catalog assigns trust_level", true})
	}

	return errs
}

// SortedCapabilities returns a copy of the manifest's capabilities with
// Required and Optional sorted, matching the persisted-form invariant
// that capabilities arrays are sorted.
func (m *Manifest) SortedCapabilities() Capabilities {
	required := append([]string(nil), m.Capabilities.Required...)
	optional := append([]string(nil), m.Capabilities.Optional...)
	sort.Strings(required)
	sort.Strings(optional)
	return Capabilities{Required: required, Optional: optional}
}

// SortedTags returns a copy of Tags sorted, matching the persisted-form
// invariant for tags.
func (m *Manifest) SortedTags() []string {
	tags := append([]string(nil), m.Tags...)
	sort.Strings(tags)
	return tags
}
