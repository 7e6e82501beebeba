// Package scenario replays scripted input against a dispatcher. A scenario is
// a YAML file naming the incident, the dispatchable resources and the input
// lines to feed, one command per line in the same syntax the UI emits.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/util"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

type Scenario struct {
	Incident  string          `yaml:"incident"`
	Resources []core.Resource `yaml:"resources"`
	Steps     []string        `yaml:"steps"`
}

// StepResult is the outcome of one dispatched line
type StepResult struct {
	Line   int
	Input  string
	Result any
	Err    error
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario")
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	for i, r := range s.Resources {
		if r.ID == "" {
			return nil, fmt.Errorf("resource %d has no id", i)
		}
	}
	return &s, nil
}

// Run dispatches every step in order. Blank lines and lines starting with #
// are skipped. In strict mode the first failing step stops the run and its
// error is returned; otherwise failures are only recorded in the results.
func Run(d *dispatcher.Dispatcher, steps []string, strict bool) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for i, step := range steps {
		line := strings.TrimSpace(step)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		args := util.SplitArgs(line)
		res, err := d.Dispatch(dispatcher.Event{Command: args[0], Args: args[1:]})
		results = append(results, StepResult{Line: i + 1, Input: line, Result: res, Err: err})
		if err != nil && strict {
			return results, fmt.Errorf("step %d %q: %w", i+1, line, err)
		}
	}
	return results, nil
}

// Failed returns the results that carry an error.
func Failed(results []StepResult) []StepResult {
	var out []StepResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
