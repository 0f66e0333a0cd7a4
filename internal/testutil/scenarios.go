package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Scenario is one morphology test case loaded from a YAML fixture: an input
// image as string art, operation parameters, and the expected result.
type Scenario struct {
	Name          string   `yaml:"name"`
	Operation     string   `yaml:"operation"`
	Connectivity  int      `yaml:"connectivity"`
	Iterations    int      `yaml:"iterations"`
	EdgeCondition string   `yaml:"edge_condition"`
	Mode          string   `yaml:"mode,omitempty"`
	Seed          []string `yaml:"seed,omitempty"`
	Input         []string `yaml:"input"`
	Want          []string `yaml:"want"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios reads a YAML scenario fixture relative to the project root.
func LoadScenarios(t *testing.T, relPath string) []Scenario {
	t.Helper()
	root, err := projectRoot()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, relPath)) //nolint:gosec // test fixture path
	require.NoError(t, err)
	var f scenarioFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	require.NotEmpty(t, f.Scenarios)
	return f.Scenarios
}

// projectRoot walks up from this file until it finds go.mod.
func projectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find go.mod")
		}
		dir = parent
	}
}
