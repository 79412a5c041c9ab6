package config

import (
	"fmt"
	"os"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultName        = "bottle"
	DefaultCapacity    = 500
	DefaultFrameDt     = 1.0 / 60.0
	DefaultMaxFrameDt  = 1.0 / 30.0
	DefaultFrames      = 900
	DefaultDrops       = 120
	DefaultDropEvery   = 3
	DefaultSpawnHeight = 4.0
	DefaultSpawnSpread = 0.25
)

type Config struct {
	Name      string          `yaml:"name"`
	Capacity  int             `yaml:"capacity"`
	Seed      int64           `yaml:"seed"`
	Container container.Shape `yaml:"container"`
	Physics   physics.Params  `yaml:"physics"`
	Scene     SceneConfig     `yaml:"scene"`
}

// SceneConfig drives the host loop: how long to run and how stars arrive.
type SceneConfig struct {
	FrameDt     float64 `yaml:"frame_dt"`
	MaxFrameDt  float64 `yaml:"max_frame_dt"`
	Frames      int     `yaml:"frames"`
	Drops       int     `yaml:"drops"`
	DropEvery   int     `yaml:"drop_every"`
	SpawnHeight float64 `yaml:"spawn_height"`
	SpawnSpread float64 `yaml:"spawn_spread"`
	Warmup      int     `yaml:"warmup"`
}

func DefaultScene() SceneConfig {
	return SceneConfig{
		FrameDt:     DefaultFrameDt,
		MaxFrameDt:  DefaultMaxFrameDt,
		Frames:      DefaultFrames,
		Drops:       DefaultDrops,
		DropEvery:   DefaultDropEvery,
		SpawnHeight: DefaultSpawnHeight,
		SpawnSpread: DefaultSpawnSpread,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:      DefaultName,
		Capacity:  DefaultCapacity,
		Container: container.DefaultShape(),
		Physics:   physics.DefaultParams(),
		Scene:     DefaultScene(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return dynamo.ConfigError("capacity must be positive, got %d", c.Capacity)
	}
	if err := c.Container.Validate(); err != nil {
		return err
	}
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	return c.Scene.Validate(c.Container)
}

func (s SceneConfig) Validate(shape container.Shape) error {
	switch {
	case s.FrameDt <= 0:
		return dynamo.ConfigError("frame dt must be positive, got %f", s.FrameDt)
	case s.MaxFrameDt < s.FrameDt:
		return dynamo.ConfigError("max frame dt %f below frame dt %f", s.MaxFrameDt, s.FrameDt)
	case s.Frames < 0 || s.Drops < 0 || s.Warmup < 0:
		return dynamo.ConfigError("frames, drops and warmup must be non-negative")
	case s.DropEvery < 1:
		return dynamo.ConfigError("drop interval must be >= 1, got %d", s.DropEvery)
	case s.SpawnSpread < 0 || s.SpawnSpread >= shape.NeckRadius:
		return dynamo.ConfigError("spawn spread %f must fit inside the neck radius %f", s.SpawnSpread, shape.NeckRadius)
	}
	return nil
}
