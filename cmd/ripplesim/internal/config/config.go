// Package config loads ripplesim scenario files.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes a simulated root population and publish sequence.
type Scenario struct {
	Name      string        `yaml:"name,omitempty"`
	Default   int           `yaml:"default"`
	Roots     []RootSpec    `yaml:"roots"`
	Publishes []PublishSpec `yaml:"publishes"`
}

// RootSpec describes one simulated root.
type RootSpec struct {
	Name string `yaml:"name"`
	// Delay is the number of scheduling turns the root waits before
	// acknowledging an update. Zero means it acknowledges synchronously.
	// A negative delay marks a root that never acknowledges, for
	// demonstrating a stalled barrier.
	Delay int `yaml:"delay"`
}

// PublishSpec describes one publish call.
type PublishSpec struct {
	Value int `yaml:"value"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Default returns the built-in scenario used when no file is given: three
// roots with mixed timing and two overlapping publishes.
func Default() *Scenario {
	return &Scenario{
		Name:    "default",
		Default: 0,
		Roots: []RootSpec{
			{Name: "sync", Delay: 0},
			{Name: "one-turn", Delay: 1},
			{Name: "three-turns", Delay: 3},
		},
		Publishes: []PublishSpec{
			{Value: 7},
			{Value: 11},
		},
	}
}

// Validate checks the scenario for structural problems.
func (s *Scenario) Validate() error {
	if len(s.Publishes) == 0 {
		return errors.New("scenario has no publishes")
	}
	seen := make(map[string]struct{}, len(s.Roots))
	for i, r := range s.Roots {
		if r.Name == "" {
			return fmt.Errorf("root %d has no name", i)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate root name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}
