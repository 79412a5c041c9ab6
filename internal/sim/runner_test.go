package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/metrics"
	"github.com/san-kum/stardrop/internal/physics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildRunner(capacity int, seed int64) (*Runner, error) {
	rng := rand.New(rand.NewSource(seed))
	s, err := physics.New(capacity, container.DefaultShape(), physics.DefaultParams(), rng)
	if err != nil {
		return nil, err
	}
	return NewRunner(s, rng, quietLogger()), nil
}

func newTestRunner(t *testing.T, capacity int, seed int64) *Runner {
	t.Helper()
	r, err := buildRunner(capacity, seed)
	if err != nil {
		t.Fatalf("physics.New: %v", err)
	}
	return r
}

func testScene(frames, drops int) config.SceneConfig {
	scene := config.DefaultScene()
	scene.Frames = frames
	scene.Drops = drops
	return scene
}

type frameCounter struct{ frames int }

func (c *frameCounter) OnFrame(r dynamo.Reader, t float64) { c.frames++ }

func TestRunnerDropSchedule(t *testing.T) {
	r := newTestRunner(t, 50, 1)
	result, err := r.Run(context.Background(), testScene(30, 5))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Dropped != 5 {
		t.Errorf("expected 5 drops, got %d", result.Dropped)
	}
	if r.Simulator().Count() != 5 {
		t.Errorf("expected 5 stars, got %d", r.Simulator().Count())
	}
	if result.Frames != 30 || len(result.Times) != 30 || len(result.Active) != 30 {
		t.Errorf("timeline length mismatch: frames=%d times=%d active=%d",
			result.Frames, len(result.Times), len(result.Active))
	}
}

func TestRunnerStopsDroppingWhenFull(t *testing.T) {
	r := newTestRunner(t, 3, 1)
	result, err := r.Run(context.Background(), testScene(60, 10))
	if err != nil {
		t.Fatalf("full jar should not fail the run: %v", err)
	}
	if result.Dropped != 3 {
		t.Errorf("expected 3 drops into a capacity-3 jar, got %d", result.Dropped)
	}
}

func TestRunnerClampsFrameDelta(t *testing.T) {
	r := newTestRunner(t, 10, 1)
	r.SetClock(FixedClock(0.5))
	scene := testScene(20, 1)

	result, err := r.Run(context.Background(), scene)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Clamped != 20 {
		t.Errorf("expected every frame clamped, got %d", result.Clamped)
	}
	want := 20 * scene.MaxFrameDt
	if got := result.Times[len(result.Times)-1]; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected elapsed %.4f, got %.4f", want, got)
	}
}

func TestRunnerSkipsIdleFrames(t *testing.T) {
	r := newTestRunner(t, 10, 1)
	result, err := r.Run(context.Background(), testScene(15, 0))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Skipped != 15 {
		t.Errorf("empty jar should skip every frame, skipped %d", result.Skipped)
	}
}

func TestRunnerCancellation(t *testing.T) {
	r := newTestRunner(t, 10, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, testScene(100, 5))
	if !errors.Is(err, dynamo.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Frame != 0 {
		t.Errorf("expected SimulationError at frame 0, got %v", err)
	}
}

func TestRunnerInvalidScene(t *testing.T) {
	r := newTestRunner(t, 10, 1)
	scene := testScene(10, 1)
	scene.DropEvery = 0

	if _, err := r.Run(context.Background(), scene); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunnerRecordsSettleFrames(t *testing.T) {
	r := newTestRunner(t, 10, 1)
	r.AddMetric(metrics.NewSettledFraction())
	counter := &frameCounter{}
	r.AddObserver(counter)

	result, err := r.Run(context.Background(), testScene(400, 1))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.SettleFrames) != 1 {
		t.Fatalf("expected one settle record, got %d", len(result.SettleFrames))
	}
	if f := result.SettleFrames[0]; f <= 0 || f > 400 {
		t.Errorf("settle frame out of range: %f", f)
	}
	if got := result.Metrics["settled_fraction"]; got != 1 {
		t.Errorf("expected settled_fraction 1, got %f", got)
	}
	if counter.frames != 400 {
		t.Errorf("observer saw %d frames, want 400", counter.frames)
	}
	if result.Skipped == 0 {
		t.Error("frames after the last freeze should be skipped")
	}
}

func TestEnsemble(t *testing.T) {
	build := func(seed int64) (*Runner, error) {
		return buildRunner(20, seed)
	}

	results, err := NewEnsemble(build, 4, 10).Run(context.Background(), testScene(60, 8))
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, res := range results {
		if res == nil || res.Frames != 60 {
			t.Errorf("run %d incomplete: %+v", i, res)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	build := func(seed int64) (*Runner, error) {
		if seed == 3 {
			return nil, boom
		}
		return buildRunner(5, seed)
	}

	if _, err := NewEnsemble(build, 4, 0).Run(context.Background(), testScene(10, 1)); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}
