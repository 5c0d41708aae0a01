package automation

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/press"
	"github.com/san-kum/presssim/internal/sim"
	"go.uber.org/zap"
)

// Sweepable material properties.
var sweepParams = map[string]func(m material.Material, v float64) (material.Material, error){
	"elastic_modulus": func(m material.Material, v float64) (material.Material, error) {
		return material.New(m.Name(), v, m.YieldStress(), m.Width(), m.Height(), m.Depth())
	},
	"yield_stress": func(m material.Material, v float64) (material.Material, error) {
		return material.New(m.Name(), m.ElasticModulus(), v, m.Width(), m.Height(), m.Depth())
	},
	"width": func(m material.Material, v float64) (material.Material, error) {
		return material.New(m.Name(), m.ElasticModulus(), m.YieldStress(), v, m.Height(), m.Depth())
	},
	"height": func(m material.Material, v float64) (material.Material, error) {
		return material.New(m.Name(), m.ElasticModulus(), m.YieldStress(), m.Width(), v, m.Depth())
	},
	"depth": func(m material.Material, v float64) (material.Material, error) {
		return material.New(m.Name(), m.ElasticModulus(), m.YieldStress(), m.Width(), m.Height(), v)
	},
}

func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for name := range sweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep repeats one test while stepping a single material
// property from Min to Max.
type ParameterSweep struct {
	Material  material.Material
	Kind      press.Kind
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Steps      int
	PeakForce  float64
	PeakStress float64
	Metrics    map[string]float64
}

// Values returns the property values the sweep visits. A single step
// visits only ParamMin.
func (p *ParameterSweep) Values() []float64 {
	if p.NumSteps <= 1 {
		return []float64{p.ParamMin}
	}
	step := (p.ParamMax - p.ParamMin) / float64(p.NumSteps-1)
	values := make([]float64, p.NumSteps)
	for i := range values {
		values[i] = p.ParamMin + float64(i)*step
	}
	values[len(values)-1] = p.ParamMax
	return values
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, s *sim.Simulator, cfg sim.Config) ([]SweepResult, error) {
	with, ok := sweepParams[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (available: %v)", sweep.ParamName, SweepParams())
	}
	if sweep.NumSteps <= 0 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))
	log := s.Logger().With(zap.String("param", sweep.ParamName))

	for i, v := range values {
		mat, err := with(sweep.Material, v)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		result, err := s.Run(ctx, mat, sweep.Kind, cfg)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: v,
			Steps:      result.StepsTaken,
			PeakForce:  result.Completion.PeakForce,
			PeakStress: result.Completion.PeakStress,
			Metrics:    result.Metrics,
		})

		log.Debug("sweep point done", zap.Int("point", i+1), zap.Int("of", len(values)), zap.Float64("value", v))
	}

	return results, nil
}
