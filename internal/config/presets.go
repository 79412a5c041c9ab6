package config

import (
	"sort"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/physics"
)

var Presets = map[string]func() *Config{
	"bottle": DefaultConfig,
	"jar": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "jar"
		cfg.Container = container.Shape{
			BodyRadius: 1.3, BottomCurveHeight: 0.2, BodyHeight: 1.8,
			ShoulderHeight: 0.2, NeckRadius: 1.1,
		}
		cfg.Scene.SpawnHeight = 3.0
		cfg.Scene.SpawnSpread = 0.8
		return cfg
	},
	"flask": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "flask"
		cfg.Container = container.Shape{
			BodyRadius: 1.4, BottomCurveHeight: 0.1, BodyHeight: 0.8,
			ShoulderHeight: 1.6, NeckRadius: 0.35,
		}
		cfg.Scene.SpawnHeight = 4.0
		cfg.Scene.SpawnSpread = 0.15
		return cfg
	},
	"tall": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "tall"
		cfg.Capacity = 1000
		cfg.Container = container.Shape{
			BodyRadius: 0.7, BottomCurveHeight: 0.3, BodyHeight: 5.0,
			ShoulderHeight: 0.4, NeckRadius: 0.4,
		}
		cfg.Scene.SpawnHeight = 7.0
		cfg.Scene.Drops = 300
		cfg.Scene.Frames = 1800
		cfg.Scene.SpawnSpread = 0.2
		return cfg
	},
	"bouncy": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "bouncy"
		cfg.Physics = physics.DefaultParams()
		cfg.Physics.Restitution = 0.7
		cfg.Physics.LinearDamping = 0.1
		cfg.Physics.Substeps = 8
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
