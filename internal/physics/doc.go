// Package physics drops and settles rigid star particles inside a
// bottle-shaped container.
//
// A host render loop calls [Simulator.Step] once per frame. Each step runs a
// fixed number of substeps; every substep rebuilds the spatial hash, then
// for each Dynamic particle integrates gravity and damping (semi-implicit
// Euler), resolves the floor, the container wall and neighbouring particles,
// and finally evaluates whether the particle has come to rest.
//
// # Settling
//
// A particle freezes once its speed stays below [Params.SettleSpeed] for
// [Params.SettleStreak] consecutive substep evaluations, or unconditionally
// after [Params.ForcedSettleFrames] evaluations. Frozen particles keep zero
// velocity and act as immovable obstacles. They are never woken when struck;
// only the mover bounces.
//
// # Capacity
//
// The particle store is sized once. [Simulator.AddStar] and
// [Simulator.AddSettledStar] return [dynamo.ErrStoreFull] when it is full:
//
//	if _, err := s.AddStar(0, 5, 0); errors.Is(err, dynamo.ErrStoreFull) {
//	    // stop dropping
//	}
//
// The host is responsible for clamping dt before calling Step.
package physics
