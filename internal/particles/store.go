// Package particles holds fixed-capacity per-star kinematic state.
package particles

import (
	"github.com/san-kum/stardrop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Store is sized once at construction and never grows. Index is the only
// identity; indices are handed out in order and never reused until Reset.
type Store struct {
	pos    []r3.Vec
	vel    []r3.Vec
	rot    []r3.Vec
	spin   []r3.Vec
	phase  []dynamo.Phase
	streak []int
	alive  []int

	count  int
	active int
}

func New(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		pos:    make([]r3.Vec, capacity),
		vel:    make([]r3.Vec, capacity),
		rot:    make([]r3.Vec, capacity),
		spin:   make([]r3.Vec, capacity),
		phase:  make([]dynamo.Phase, capacity),
		streak: make([]int, capacity),
		alive:  make([]int, capacity),
	}
}

// Append adds a particle. A Settled particle has its velocity and spin
// discarded. Returns ErrStoreFull without modifying the store at capacity.
func (s *Store) Append(pos, vel, rot, spin r3.Vec, phase dynamo.Phase) (int, error) {
	if s.count == len(s.pos) {
		return -1, dynamo.ErrStoreFull
	}
	i := s.count
	s.count++

	s.pos[i] = pos
	s.rot[i] = rot
	s.phase[i] = phase
	s.streak[i] = 0
	s.alive[i] = 0
	if phase == dynamo.Settled {
		s.vel[i] = r3.Vec{}
		s.spin[i] = r3.Vec{}
	} else {
		s.vel[i] = vel
		s.spin[i] = spin
		s.active++
	}
	return i, nil
}

func (s *Store) Reset() {
	s.count = 0
	s.active = 0
}

func (s *Store) Count() int    { return s.count }
func (s *Store) Capacity() int { return len(s.pos) }

// Active returns the number of Dynamic particles.
func (s *Store) Active() int { return s.active }

func (s *Store) Position(i int) r3.Vec    { return s.pos[:s.count][i] }
func (s *Store) Rotation(i int) r3.Vec    { return s.rot[:s.count][i] }
func (s *Store) Velocity(i int) r3.Vec    { return s.vel[:s.count][i] }
func (s *Store) Spin(i int) r3.Vec        { return s.spin[:s.count][i] }
func (s *Store) Phase(i int) dynamo.Phase { return s.phase[:s.count][i] }
func (s *Store) IsSettled(i int) bool     { return s.phase[:s.count][i] == dynamo.Settled }

// Positions exposes the live position slice for broad-phase rebuilds.
func (s *Store) Positions() []r3.Vec { return s.pos[:s.count] }

func (s *Store) SetPosition(i int, p r3.Vec) { s.pos[i] = p }
func (s *Store) SetVelocity(i int, v r3.Vec) { s.vel[i] = v }
func (s *Store) SetRotation(i int, r r3.Vec) { s.rot[i] = r }
func (s *Store) SetSpin(i int, w r3.Vec)     { s.spin[i] = w }

func (s *Store) Streak(i int) int      { return s.streak[i] }
func (s *Store) SetStreak(i, n int)    { s.streak[i] = n }
func (s *Store) AliveFrames(i int) int { return s.alive[i] }

// Tick advances the alive counter and returns the new value.
func (s *Store) Tick(i int) int {
	s.alive[i]++
	return s.alive[i]
}

// SetAliveFrames is used when restoring particles that should skip the
// forced-settle countdown.
func (s *Store) SetAliveFrames(i, n int) { s.alive[i] = n }

// Freeze pins particle i as Settled with zero velocity and spin.
func (s *Store) Freeze(i int) {
	if s.phase[i] == dynamo.Settled {
		return
	}
	s.phase[i] = dynamo.Settled
	s.vel[i] = r3.Vec{}
	s.spin[i] = r3.Vec{}
	s.active--
}
