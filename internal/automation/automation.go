package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
	"github.com/san-kum/presssim/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of tests.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Material string `yaml:"material"`
	Kind     string `yaml:"kind"`
	Save     bool   `yaml:"save"`
}

// Saver stores a finished run and returns its id.
type Saver interface {
	Save(result *sim.Result) (string, error)
}

// StepResult is the outcome of one scenario step. RunID is empty unless
// the step asked to be saved.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	for i, step := range s.Steps {
		if step.Material == "" {
			return fmt.Errorf("step %d: material is required", i+1)
		}
		if _, err := press.ParseKind(step.Kind); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// RunScenario executes the steps in order and stops at the first failure,
// returning what completed so far. saver may be nil when nothing is saved.
func RunScenario(ctx context.Context, scenario *Scenario, s *sim.Simulator, catalog *material.Catalog, cfg sim.Config, saver Saver) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := s.Logger().With(zap.String("scenario", scenario.Name))

	for i, step := range scenario.Steps {
		log.Info("running step", zap.Int("step", i+1), zap.Int("of", len(scenario.Steps)), zap.String("material", step.Material))

		mat, err := catalog.Get(step.Material)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		kind, err := press.ParseKind(step.Kind)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := s.Run(ctx, mat, kind, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.Save && saver != nil {
			if sr.RunID, err = saver.Save(result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
