package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wastepolicy/pkg/domain"
)

type profilesFile struct {
	Barangays []domain.BarangayProfile `yaml:"barangays"`
}

// Profiles returns the barangay profiles to simulate: the ones in
// Simulation.ProfilesPath when set, the built-in ones otherwise.
func (c *Config) Profiles() ([]domain.BarangayProfile, error) {
	if c.Simulation.ProfilesPath == "" {
		return domain.DefaultProfiles(), nil
	}

	return LoadProfiles(c.Simulation.ProfilesPath)
}

// LoadProfiles reads barangay profiles from a YAML file. Fields left out of
// a profile's behavior block keep their default values.
func LoadProfiles(path string) ([]domain.BarangayProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read profiles file: %w", err)
	}

	return ParseProfiles(data)
}

// ParseProfiles decodes and validates a YAML profiles document.
func ParseProfiles(data []byte) ([]domain.BarangayProfile, error) {
	var raw struct {
		Barangays []yaml.Node `yaml:"barangays"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not parse profiles: %w", err)
	}
	if len(raw.Barangays) == 0 {
		return nil, fmt.Errorf("profiles file has no barangays")
	}

	out := profilesFile{Barangays: make([]domain.BarangayProfile, len(raw.Barangays))}
	seen := make(map[int]bool, len(raw.Barangays))
	for i := range raw.Barangays {
		p := domain.BarangayProfile{
			Behavior:  domain.DefaultBehavior(),
			IncomeMix: domain.DefaultIncomeMix,
		}
		if err := raw.Barangays[i].Decode(&p); err != nil {
			return nil, fmt.Errorf("could not decode barangay %d: %w", i+1, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid barangay %q: %w", p.Name, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate barangay id %d", p.ID)
		}
		seen[p.ID] = true
		out.Barangays[i] = p
	}

	return out.Barangays, nil
}
