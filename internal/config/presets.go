package config

import "sort"

type preset struct {
	description string
	apply       func(*Config)
}

var presets = map[string]preset{
	"nominal": {
		description: "default motor, 1 s at h=1 ms",
		apply:       func(*Config) {},
	},
	"quick": {
		description: "ten steps, enough to check the wiring",
		apply: func(c *Config) {
			c.TMax = 0.01
		},
	},
	"heavy_load": {
		description: "ten times the load inertia and damping, 5 s",
		apply: func(c *Config) {
			c.TMax = 5.0
			c.Motor.Jload = 10.0
			c.Motor.Bload = 1.0
		},
	},
	"weak_field": {
		description: "halved back-EMF and torque constants",
		apply: func(c *Config) {
			c.Motor.Ke = 0.05
			c.Motor.Kt = 0.05
		},
	},
}

// GetPreset returns the default config with the named preset applied, or
// nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Preset = name
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DescribePreset(name string) string {
	return presets[name].description
}
