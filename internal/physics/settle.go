package physics

import "gonum.org/v1/gonum/spatial/r3"

// evaluateSettle applies the rest rule to Dynamic particle i: a streak of
// slow evaluations, or the forced timeout, freezes it.
func (s *Simulator) evaluateSettle(i int) {
	p := s.params
	alive := s.store.Tick(i)
	timedOut := alive > p.ForcedSettleFrames

	if r3.Norm(s.store.Velocity(i)) >= p.SettleSpeed && !timedOut {
		s.store.SetStreak(i, 0)
		return
	}

	streak := s.store.Streak(i) + 1
	s.store.SetStreak(i, streak)
	if streak >= p.SettleStreak || timedOut {
		s.store.Freeze(i)
	}
}
