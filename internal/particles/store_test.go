package particles

import (
	"errors"
	"testing"

	"github.com/san-kum/stardrop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAppendAndAccessors(t *testing.T) {
	s := New(4)
	pos := r3.Vec{X: 1, Y: 2, Z: 3}
	vel := r3.Vec{X: 0.1}
	rot := r3.Vec{Y: 0.5}

	idx, err := s.Append(pos, vel, rot, r3.Vec{Z: 1}, dynamo.Dynamic)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected index 0, got %d", idx)
	}
	if s.Position(0) != pos || s.Velocity(0) != vel || s.Rotation(0) != rot {
		t.Errorf("accessors returned %v %v %v", s.Position(0), s.Velocity(0), s.Rotation(0))
	}
	if s.IsSettled(0) {
		t.Error("dynamic particle reported settled")
	}
	if s.Active() != 1 || s.Count() != 1 {
		t.Errorf("active=%d count=%d, want 1/1", s.Active(), s.Count())
	}
}

func TestAppendSettledDropsVelocity(t *testing.T) {
	s := New(1)
	idx, _ := s.Append(r3.Vec{}, r3.Vec{X: 5}, r3.Vec{}, r3.Vec{Y: 3}, dynamo.Settled)
	if s.Velocity(idx) != (r3.Vec{}) || s.Spin(idx) != (r3.Vec{}) {
		t.Error("settled particle kept velocity")
	}
	if s.Active() != 0 {
		t.Errorf("expected 0 active, got %d", s.Active())
	}
}

func TestAppendFull(t *testing.T) {
	s := New(2)
	for i := 0; i < 2; i++ {
		if _, err := s.Append(r3.Vec{X: float64(i)}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Dynamic); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	idx, err := s.Append(r3.Vec{X: 9}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Dynamic)
	if !errors.Is(err, dynamo.ErrStoreFull) {
		t.Fatalf("expected ErrStoreFull, got %v", err)
	}
	if idx != -1 {
		t.Errorf("expected -1 index on full, got %d", idx)
	}
	if s.Count() != 2 {
		t.Errorf("count changed on full append: %d", s.Count())
	}
	if s.Position(1).X != 1 {
		t.Error("store modified by failed append")
	}
}

func TestReset(t *testing.T) {
	s := New(3)
	s.Append(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Dynamic)
	s.Append(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Settled)
	s.Reset()

	if s.Count() != 0 || s.Active() != 0 {
		t.Fatalf("reset left count=%d active=%d", s.Count(), s.Active())
	}
	idx, err := s.Append(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Dynamic)
	if err != nil || idx != 0 {
		t.Errorf("append after reset = (%d, %v), want (0, nil)", idx, err)
	}
	if s.Streak(0) != 0 || s.AliveFrames(0) != 0 {
		t.Error("bookkeeping not cleared on reuse")
	}
}

func TestFreeze(t *testing.T) {
	s := New(1)
	s.Append(r3.Vec{}, r3.Vec{X: 1, Y: 2}, r3.Vec{}, r3.Vec{Z: 4}, dynamo.Dynamic)
	s.Freeze(0)
	s.Freeze(0)

	if !s.IsSettled(0) {
		t.Error("particle not settled after freeze")
	}
	if s.Velocity(0) != (r3.Vec{}) || s.Spin(0) != (r3.Vec{}) {
		t.Error("freeze did not zero velocity")
	}
	if s.Active() != 0 {
		t.Errorf("double freeze corrupted active count: %d", s.Active())
	}
}

func TestAccessorOutOfRangePanics(t *testing.T) {
	s := New(4)
	s.Append(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Dynamic)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for index >= count")
		}
	}()
	_ = s.Position(1)
}

func TestTick(t *testing.T) {
	s := New(1)
	s.Append(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{}, dynamo.Dynamic)
	s.Tick(0)
	if got := s.Tick(0); got != 2 {
		t.Errorf("Tick = %d, want 2", got)
	}
	s.SetAliveFrames(0, 100)
	if s.AliveFrames(0) != 100 {
		t.Errorf("AliveFrames = %d, want 100", s.AliveFrames(0))
	}
}
