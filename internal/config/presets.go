package config

import (
	"sort"

	"github.com/san-kum/walksim/internal/walker"
)

var Presets = map[string]*Config{
	// the periodic downhill gait
	"reference": DefaultConfig(),
	// level ground: no energy input, the walker winds down
	"flat": func() *Config {
		c := DefaultConfig()
		c.Params.Alpha = 0
		return c
	}(),
	// ten times larger step for quick looks
	"coarse": func() *Config {
		c := DefaultConfig()
		c.Dt = 1e-3
		c.Downsample = 10
		return c
	}(),
	"long": func() *Config {
		c := DefaultConfig()
		c.MaxT = 60
		c.Downsample = 500
		return c
	}(),
	// a slope four times steeper, started from the reference state
	"steep": func() *Config {
		c := DefaultConfig()
		c.Params.Alpha = 4 * walker.DefaultParams().Alpha
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
