package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/stardrop/internal/dynamo"
)

const (
	DefaultGravity            = 9.8
	DefaultRestitution        = 0.3
	DefaultFloorFriction      = 0.2
	DefaultLinearDamping      = 0.4
	DefaultAngularDamping     = 1.5
	DefaultSubsteps           = 4
	DefaultEffectiveRadius    = 0.11
	DefaultCellSize           = 0.25
	DefaultSettleSpeed        = 0.05
	DefaultSettleStreak       = 30
	DefaultForcedSettleFrames = 1200
	DefaultSpawnJitter        = 0.15
	DefaultSpinJitter         = 3.0
	DefaultWarmupDt           = 1.0 / 60.0
)

// Params is the immutable tuning of one simulator instance.
type Params struct {
	Gravity         float64 `yaml:"gravity" json:"gravity"`
	Restitution     float64 `yaml:"restitution" json:"restitution"`
	FloorFriction   float64 `yaml:"floor_friction" json:"floor_friction"` // fraction of horizontal velocity removed per floor contact
	LinearDamping   float64 `yaml:"linear_damping" json:"linear_damping"`
	AngularDamping  float64 `yaml:"angular_damping" json:"angular_damping"`
	Substeps        int     `yaml:"substeps" json:"substeps"`
	CellSize        float64 `yaml:"cell_size" json:"cell_size"`
	EffectiveRadius float64 `yaml:"effective_radius" json:"effective_radius"`

	SettleSpeed        float64 `yaml:"settle_speed" json:"settle_speed"`
	SettleStreak       int     `yaml:"settle_streak" json:"settle_streak"`
	ForcedSettleFrames int     `yaml:"forced_settle_frames" json:"forced_settle_frames"` // counted in substeps

	SpawnJitter float64 `yaml:"spawn_jitter" json:"spawn_jitter"`
	SpinJitter  float64 `yaml:"spin_jitter" json:"spin_jitter"`
	WarmupDt    float64 `yaml:"warmup_dt" json:"warmup_dt"`
}

func DefaultParams() Params {
	return Params{
		Gravity:            DefaultGravity,
		Restitution:        DefaultRestitution,
		FloorFriction:      DefaultFloorFriction,
		LinearDamping:      DefaultLinearDamping,
		AngularDamping:     DefaultAngularDamping,
		Substeps:           DefaultSubsteps,
		CellSize:           DefaultCellSize,
		EffectiveRadius:    DefaultEffectiveRadius,
		SettleSpeed:        DefaultSettleSpeed,
		SettleStreak:       DefaultSettleStreak,
		ForcedSettleFrames: DefaultForcedSettleFrames,
		SpawnJitter:        DefaultSpawnJitter,
		SpinJitter:         DefaultSpinJitter,
		WarmupDt:           DefaultWarmupDt,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Substeps < 1:
		return dynamo.ConfigError("substeps must be >= 1, got %d", p.Substeps)
	case p.EffectiveRadius <= 0:
		return dynamo.ConfigError("effective radius must be positive, got %f", p.EffectiveRadius)
	case p.CellSize < 2*p.EffectiveRadius:
		// the 27-cell query only covers contacts when a cell spans a full diameter
		return dynamo.ConfigError("cell size %f smaller than collision diameter %f", p.CellSize, 2*p.EffectiveRadius)
	case p.Restitution < 0 || p.Restitution > 1:
		return dynamo.ConfigError("restitution must be in [0, 1], got %f", p.Restitution)
	case p.FloorFriction < 0 || p.FloorFriction > 1:
		return dynamo.ConfigError("floor friction must be in [0, 1], got %f", p.FloorFriction)
	case p.LinearDamping < 0 || p.AngularDamping < 0:
		return dynamo.ConfigError("damping must be non-negative")
	case p.SettleSpeed < 0:
		return dynamo.ConfigError("settle speed must be non-negative, got %f", p.SettleSpeed)
	case p.SettleStreak < 1:
		return dynamo.ConfigError("settle streak must be >= 1, got %d", p.SettleStreak)
	case p.ForcedSettleFrames < 1:
		return dynamo.ConfigError("forced settle frames must be >= 1, got %d", p.ForcedSettleFrames)
	case p.WarmupDt <= 0:
		return dynamo.ConfigError("warmup dt must be positive, got %f", p.WarmupDt)
	}
	return nil
}

var tunable = map[string]func(p *Params) *float64{
	"gravity":         func(p *Params) *float64 { return &p.Gravity },
	"restitution":     func(p *Params) *float64 { return &p.Restitution },
	"friction":        func(p *Params) *float64 { return &p.FloorFriction },
	"damping":         func(p *Params) *float64 { return &p.LinearDamping },
	"angular_damping": func(p *Params) *float64 { return &p.AngularDamping },
	"settle_speed":    func(p *Params) *float64 { return &p.SettleSpeed },
	"spawn_jitter":    func(p *Params) *float64 { return &p.SpawnJitter },
}

// Tunable returns the names accepted by Set, sorted.
func Tunable() []string {
	names := make([]string, 0, len(tunable))
	for name := range tunable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set changes one tunable parameter by name. The result is not validated.
func (p *Params) Set(name string, v float64) error {
	field, ok := tunable[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q (tunable: %v)", name, Tunable())
	}
	*field(p) = v
	return nil
}

func (p Params) Get(name string) (float64, bool) {
	field, ok := tunable[name]
	if !ok {
		return 0, false
	}
	return *field(&p), true
}
