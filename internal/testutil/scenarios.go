// Package testutil provides shared test helpers for Dirac Go tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/dirac/pkg/evaluator"
)

// ScenariosDir is the scenario directory relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one end-to-end case. Cmd is eval, check or fmt.
type Scenario struct {
	Name   string          `yaml:"name"`
	Cmd    string          `yaml:"cmd"`
	Input  string          `yaml:"input"`
	Budget *ScenarioBudget `yaml:"budget,omitempty"`
	Tags   []string        `yaml:"tags,omitempty"`
	Expect ExpectedResult  `yaml:"expect"`

	// File is the scenario file the case was loaded from.
	File string `yaml:"-"`
}

// ScenarioBudget overrides the default evaluation budget.
type ScenarioBudget struct {
	MaxQubits   int `yaml:"max_qubits"`
	MaxElements int `yaml:"max_elements"`
}

// EvalBudget returns the evaluation budget for s.
func (s *Scenario) EvalBudget() evaluator.Budget {
	if s.Budget == nil {
		return evaluator.DefaultBudget()
	}
	return evaluator.Budget{MaxQubits: s.Budget.MaxQubits, MaxElements: s.Budget.MaxElements}
}

// ExpectedResult describes the expected outcome of running a scenario.
// Data holds elements in row-major order rendered like 0.5+0i.
type ExpectedResult struct {
	ExitCode      int      `yaml:"exit_code"`
	Kind          string   `yaml:"kind,omitempty"`
	Shape         []int    `yaml:"shape,omitempty"`
	Data          []string `yaml:"data,omitempty"`
	Text          string   `yaml:"text,omitempty"`
	Code          string   `yaml:"code,omitempty"`
	Error         string   `yaml:"error,omitempty"`
	ErrorContains string   `yaml:"error_contains,omitempty"`
	Offset        *int     `yaml:"offset,omitempty"`
}

// LoadScenarios reads every scenario in a YAML file holding a sequence of
// scenarios.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenarios []Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range scenarios {
		scenarios[i].File = path
		if scenarios[i].Name == "" {
			return nil, fmt.Errorf("%s: scenario %d has no name", path, i)
		}
		if scenarios[i].Cmd == "" {
			scenarios[i].Cmd = "eval"
		}
	}
	return scenarios, nil
}

// ListScenarioFiles returns the YAML files under root in lexical order.
func ListScenarioFiles(root string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(root, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadAll loads every scenario under root. Scenario names must be unique.
func LoadAll(root string) ([]Scenario, error) {
	files, err := ListScenarioFiles(root)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string)
	var all []Scenario
	for _, f := range files {
		scenarios, err := LoadScenarios(f)
		if err != nil {
			return nil, err
		}
		for _, s := range scenarios {
			if prev, ok := seen[s.Name]; ok {
				return nil, fmt.Errorf("duplicate scenario %q in %s and %s", s.Name, prev, f)
			}
			seen[s.Name] = f
			all = append(all, s)
		}
	}
	return all, nil
}
