package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/maskroute/internal/model"
)

// ErrUnknownProfile is returned when a rule profile name matches neither a
// built-in nor a custom profile.
var ErrUnknownProfile = errors.New("unknown rule profile")

// DefaultProfilesPath returns the default file path for custom rule profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.yaml")
}

// SaveCustomProfiles saves custom profiles to a YAML or JSON file.
func SaveCustomProfiles(path string, profiles []model.RuleProfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := marshal(path, profiles)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.RuleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.RuleProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.RuleProfile
	if err := unmarshal(path, data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles %s: %w", path, err)
	}

	// Ensure loaded profiles are not marked as built-in
	for i := range profiles {
		profiles[i].IsBuiltIn = false
		if profiles[i].Name == "" {
			return nil, fmt.Errorf("profile %d in %s has no name", i+1, path)
		}
	}
	if profiles == nil {
		profiles = []model.RuleProfile{}
	}
	return profiles, nil
}

// ExportProfile exports a single profile to a file (for sharing).
func ExportProfile(path string, profile model.RuleProfile) error {
	profile.IsBuiltIn = false
	data, err := marshal(path, profile)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a file.
func ImportProfile(path string) (model.RuleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RuleProfile{}, err
	}

	var profile model.RuleProfile
	if err := unmarshal(path, data, &profile); err != nil {
		return model.RuleProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.RuleProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}

// FindProfile looks name up among the custom profiles first, then the
// built-in ones.
func FindProfile(name string, custom []model.RuleProfile) (model.RuleProfile, error) {
	for _, p := range custom {
		if p.Name == name {
			return p, nil
		}
	}
	for _, p := range model.RuleProfiles {
		if p.Name == name {
			return p, nil
		}
	}
	return model.RuleProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// ResolveRules returns the rules a DRC run applies. Explicit rules in the
// settings win; otherwise the named profile (custom or built-in) is used, with
// each wildcard rule expanded once per layer.
func ResolveRules(settings model.DRCSettings, custom []model.RuleProfile, layers ...string) ([]model.LayerRule, error) {
	if len(settings.Rules) > 0 {
		return settings.Rules, nil
	}
	p, err := FindProfile(settings.Profile, custom)
	if err != nil {
		return nil, err
	}
	var out []model.LayerRule
	for _, r := range p.Rules {
		if r.Layer != "*" {
			out = append(out, r)
			continue
		}
		for _, layer := range layers {
			r.Layer = layer
			out = append(out, r)
		}
	}
	return out, nil
}
