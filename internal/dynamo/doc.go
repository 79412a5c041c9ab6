// Package dynamo provides the shared vocabulary of the star simulator.
//
// The package defines the types every other package agrees on:
//
//   - [Phase]: the two-state tag of a particle (Dynamic or Settled)
//   - [Reader]: the read-only view a renderer uses once per frame
//   - [Metric] and [Observer]: hooks the host loop drives after each frame
//   - domain errors such as [ErrStoreFull]
//
// # Example
//
//	s, _ := physics.New(500, container.DefaultShape(), physics.DefaultParams(), rand.New(rand.NewSource(1)))
//	idx, err := s.AddStar(0, 5, 0)
//	if errors.Is(err, dynamo.ErrStoreFull) {
//	    // jar is full
//	}
//	s.Step(1.0 / 60)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Run independent simulators in
// separate goroutines (see sim.Ensemble) rather than sharing one.
package dynamo
