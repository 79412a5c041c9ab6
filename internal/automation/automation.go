package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/physics"
	"github.com/san-kum/stardrop/internal/sim"
	"github.com/san-kum/stardrop/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of jar sessions. A step may reopen a jar
// saved by an earlier step, which is how a player's jar carries over from
// one session to the next.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one session. Restore names the SaveAs of an earlier step;
// Earned is the player's star total at the start of the session.
type ScenarioStep struct {
	Preset  string             `yaml:"preset"`
	Params  map[string]float64 `yaml:"params"`
	Seed    int64              `yaml:"seed"`
	Drops   int                `yaml:"drops"`
	Frames  int                `yaml:"frames"`
	Restore string             `yaml:"restore"`
	Earned  int                `yaml:"earned"`
	SaveAs  string             `yaml:"save_as"`
}

// StepResult summarizes one finished session.
type StepResult struct {
	RunID    string
	Restored int
	Synced   int
	Stars    int
	Settled  int
	Result   *sim.Result
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
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps: %w", scenario.Name, dynamo.ErrInvalidConfig)
	}

	return &scenario, nil
}

// RunScenario executes every step in order. Each step's jar is saved to st,
// so later steps can restore it by name.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	saved := make(map[string]string)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset, "restore", step.Restore)

		res, err := runStep(ctx, step, st, saved, logger.With("step", i+1))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.SaveAs != "" {
			saved[step.SaveAs] = res.RunID
		}
		results = append(results, *res)
	}

	return results, nil
}

func runStep(ctx context.Context, step ScenarioStep, st *storage.Store, saved map[string]string, logger *slog.Logger) (*StepResult, error) {
	var (
		cfg   *config.Config
		stars storage.Stars
		err   error
	)
	switch {
	case step.Restore != "":
		runID, ok := saved[step.Restore]
		if !ok {
			return nil, fmt.Errorf("no earlier step saved as %q", step.Restore)
		}
		if cfg, err = st.LoadConfig(runID); err != nil {
			return nil, err
		}
		if stars, err = st.LoadStars(runID); err != nil {
			return nil, err
		}
	case step.Preset != "":
		if cfg = config.GetPreset(step.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if step.SaveAs != "" {
		cfg.Name = step.SaveAs
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	if step.Frames > 0 {
		cfg.Scene.Frames = step.Frames
	}
	cfg.Scene.Drops = step.Drops
	for name, v := range step.Params {
		if err := cfg.Physics.Set(name, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s, err := physics.New(cfg.Capacity, cfg.Container, cfg.Physics, rng)
	if err != nil {
		return nil, err
	}
	runner := sim.NewRunner(s, rng, logger)

	restored, err := storage.Restore(s, stars)
	if err != nil {
		return nil, err
	}
	recorded, err := storage.Sync(s, restored, max(step.Earned, restored), spawnDisc(rng, cfg.Scene))
	if err != nil {
		return nil, err
	}

	result, err := runner.Run(ctx, cfg.Scene)
	if err != nil {
		return nil, err
	}

	runID, err := st.Save(cfg, s, result)
	if err != nil {
		return nil, err
	}
	logger.Info("step saved", "run", runID, "stars", s.Count(), "restored", restored, "synced", recorded-restored)

	return &StepResult{
		RunID:    runID,
		Restored: restored,
		Synced:   recorded - restored,
		Stars:    s.Count(),
		Settled:  s.Count() - s.Active(),
		Result:   result,
	}, nil
}

func spawnDisc(rng *rand.Rand, scene config.SceneConfig) storage.SpawnFunc {
	return func() (float64, float64, float64) {
		angle := rng.Float64() * 2 * math.Pi
		rad := scene.SpawnSpread * math.Sqrt(rng.Float64())
		return rad * math.Cos(angle), scene.SpawnHeight, rad * math.Sin(angle)
	}
}
