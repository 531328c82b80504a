package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/swap-sim/swap-sim/sim"
)

// LoadScenario reads a YAML scenario file and applies it on top of the
// default configuration, so scenarios only need to declare the fields they
// change. The result is validated by the engine, not here.
func LoadScenario(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scenario %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return cfg, nil
}
