package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// QuarantineCheckSeed is one configurable trigger loaded from the TOML
// seed file referenced by QUARANTINE_CONFIG.
type QuarantineCheckSeed struct {
	TallyID    string  `toml:"tally_id"`
	Name       string  `toml:"name"`
	Method     string  `toml:"method"`
	Active     bool    `toml:"active"`
	Value      float64 `toml:"value"`
	Percentage float64 `toml:"percentage"`
}

type quarantineSeedFile struct {
	Checks []QuarantineCheckSeed `toml:"checks"`
}

// LoadQuarantineSeeds reads quarantine check definitions from a TOML file.
// An empty path returns no seeds without error.
func LoadQuarantineSeeds(path string) ([]QuarantineCheckSeed, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quarantine config: %w", err)
	}

	var file quarantineSeedFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse quarantine config: %w", err)
	}

	for i, check := range file.Checks {
		if check.Name == "" {
			return nil, fmt.Errorf("quarantine config: check %d has no name", i)
		}
		if check.Method == "" {
			return nil, fmt.Errorf("quarantine config: check %q has no method", check.Name)
		}
	}

	return file.Checks, nil
}
