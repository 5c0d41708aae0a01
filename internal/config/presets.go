package config

import (
	"sort"
	"time"
)

// Presets are ready-made runs keyed by material and then preset name.
var Presets = map[string]map[string]*Config{
	"brick": {
		"crush": preset("brick", "compression", DefaultCadence),
		"pull":  preset("brick", "tensile", DefaultCadence),
		"quick": preset("brick", "compression", 0),
	},
	"packaging": {
		"crush": preset("packaging", "compression", DefaultCadence),
		"pull":  preset("packaging", "tensile", DefaultCadence),
		"quick": preset("packaging", "compression", 0),
		"slow":  preset("packaging", "compression", 200*time.Millisecond),
	},
}

func preset(material, kind string, cadence time.Duration) *Config {
	cfg := DefaultConfig()
	cfg.Material = material
	cfg.Kind = kind
	cfg.Cadence = cadence
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(material, name string) *Config {
	materialPresets, ok := Presets[material]
	if !ok {
		return nil
	}
	cfg, ok := materialPresets[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets(material string) []string {
	materialPresets, ok := Presets[material]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(materialPresets))
	for name := range materialPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
