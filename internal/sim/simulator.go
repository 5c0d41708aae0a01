package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/presssim/internal/material"
	"github.com/san-kum/presssim/internal/metrics"
	"github.com/san-kum/presssim/internal/press"
	"go.uber.org/zap"
)

// Simulator drives press sessions at a fixed cadence, playing the part of
// the display timer.
type Simulator struct {
	machine     press.Machine
	logger      *zap.Logger
	metricsFunc func(material.Material) []metrics.Metric
	observers   []press.Observer
}

func New(machine press.Machine, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		machine:     machine,
		logger:      logger,
		metricsFunc: metrics.DefaultMetrics,
		observers:   make([]press.Observer, 0),
	}
}

func (s *Simulator) AddObserver(o press.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Logger() *zap.Logger { return s.logger }

// SetMetrics replaces the per-run metric factory.
func (s *Simulator) SetMetrics(fn func(material.Material) []metrics.Metric) { s.metricsFunc = fn }

// Run performs one complete test on a fresh session. On cancellation the
// session is paused and the partial result is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, mat material.Material, kind press.Kind, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	session := press.NewSession(s.machine)
	for _, o := range s.observers {
		session.AddObserver(o)
	}

	ms := s.metricsFunc(mat)
	for _, m := range ms {
		m.Reset()
	}

	result := &Result{
		Material:  mat,
		Kind:      kind,
		Snapshots: make([]press.Snapshot, 0, s.expectedSteps(mat, kind)),
		Metrics:   make(map[string]float64),
	}

	if err := session.Start(mat, kind); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("material", mat.Name()), zap.Stringer("kind", kind))
	log.Debug("run started", zap.Duration("cadence", cfg.Cadence))

	start := time.Now()
	err := s.Drive(ctx, session, cfg, func(snap press.Snapshot) bool {
		for _, m := range ms {
			m.Observe(snap)
		}
		result.Snapshots = append(result.Snapshots, snap)
		return true
	})
	result.Elapsed = time.Since(start)
	result.StepsTaken = len(result.Snapshots)

	for _, m := range ms {
		result.Metrics[m.Name()] = m.Value()
	}
	if c, ok := session.Completion(); ok {
		result.Completion = c
		result.Completed = true
	}

	if err != nil {
		if session.Status() == press.Running {
			_ = session.Pause()
		}
		log.Warn("run stopped early", zap.Int("steps", result.StepsTaken), zap.Error(err))
		return result, err
	}

	log.Info("run completed",
		zap.Int("steps", result.StepsTaken),
		zap.Float64("peak_force", result.Completion.PeakForce),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// Drive steps an already started session until it completes, the callback
// returns false, ctx is done, or cfg.MaxSteps calls to Step have been made.
// The call that reports completion counts towards MaxSteps.
func (s *Simulator) Drive(ctx context.Context, session *press.Session, cfg Config, callback func(press.Snapshot) bool) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if session.Status() != press.Running {
		return &press.StateError{Op: "drive", Status: session.Status(), Wrapped: press.ErrNotRunning}
	}

	var tick <-chan time.Time
	if cfg.Cadence > 0 {
		ticker := time.NewTicker(cfg.Cadence)
		defer ticker.Stop()
		tick = ticker.C
	}

	for calls := 0; calls < cfg.MaxSteps; calls++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		snap, out := session.Step()
		switch out {
		case press.Completed:
			return nil
		case press.Skipped:
			return fmt.Errorf("session stopped after %d steps: %w", calls, press.ErrNotRunning)
		}

		if !callback(snap) {
			return nil
		}
	}

	return ErrStepLimit
}

func (s *Simulator) expectedSteps(mat material.Material, kind press.Kind) int {
	limit := press.Endpoint(mat, kind)
	if limit <= 0 {
		return 0
	}
	return int(limit/press.StepSize) + 1
}
