package main

import (
	"testing"
	"time"

	"github.com/san-kum/presssim/internal/config"
	"github.com/spf13/cobra"
)

func presetCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	var k string
	var c time.Duration
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().StringVar(&k, "kind", config.DefaultKind, "")
	cmd.Flags().DurationVar(&c, "cadence", config.DefaultCadence, "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		kind        string
		cadence     time.Duration
		preset      string
		wantKind    string
		wantCadence time.Duration
	}{
		{"preset kind", nil, "compression", config.DefaultCadence, "pull", "tensile", config.DefaultCadence},
		{"preset cadence", nil, "compression", config.DefaultCadence, "quick", "compression", 0},
		{"explicit kind", []string{"--kind", "tensile"}, "tensile", config.DefaultCadence, "crush", "tensile", config.DefaultCadence},
		{"explicit cadence", []string{"--cadence", "10ms"}, "compression", 10 * time.Millisecond, "quick", "compression", 10 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Kind = tt.kind
			cfg.Cadence = tt.cadence

			if err := applyPreset(presetCmd(t, tt.args...), cfg, tt.preset); err != nil {
				t.Fatalf("applyPreset: %v", err)
			}
			if cfg.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", cfg.Kind, tt.wantKind)
			}
			if cfg.Cadence != tt.wantCadence {
				t.Errorf("Cadence = %v, want %v", cfg.Cadence, tt.wantCadence)
			}
		})
	}
}

func TestApplyPresetUnknown(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := applyPreset(presetCmd(t), cfg, "nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
