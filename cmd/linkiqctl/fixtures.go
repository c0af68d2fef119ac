package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Example is one reference telegram: a wM-Bus address, its application
// payload, and the code rate it was transmitted at.
type Example struct {
	Name           string `yaml:"name"`
	Rate           string `yaml:"rate"`
	Manufacturer   uint16 `yaml:"manufacturer"`
	Serial         uint32 `yaml:"serial"`
	Version        byte   `yaml:"version"`
	DeviceType     byte   `yaml:"device_type"`
	IsPrioritized  bool   `yaml:"is_prioritized"`
	IsInstallation bool   `yaml:"is_installation"`
	DataHex        string `yaml:"data_hex"`
}

// fixtureSearchPaths are tried in order when path is not given explicitly,
// so the tool works both from the repository root and from its own
// directory.
var fixtureSearchPaths = []string{
	"testdata/examples.yaml",
	"../../testdata/examples.yaml",
}

// loadExamples reads and parses a fixture file. If path is empty, the
// candidate paths in fixtureSearchPaths are tried in order.
func loadExamples(path string) ([]Example, error) {
	candidates := []string{path}
	if path == "" {
		candidates = fixtureSearchPaths
	}

	var lastErr error
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		var examples []Example
		if err := yaml.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("linkiqctl: parse %s: %w", candidate, err)
		}
		return examples, nil
	}
	return nil, fmt.Errorf("linkiqctl: no fixture file found: %w", lastErr)
}
