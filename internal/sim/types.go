package sim

// Result is the per-frame timeline of one host loop run.
type Result struct {
	Times   []float64
	Active  []int
	Settled []int
	Energy  []float64

	// SettleFrames holds, for every star that froze during the run, the
	// number of frames between its spawn and its freeze.
	SettleFrames []float64
	Metrics      map[string]float64

	Frames  int
	Dropped int
	Skipped int
	Clamped int
}

// Clock returns the raw frame delta for frame f before clamping.
type Clock func(frame int) float64

// FixedClock returns a clock that always reports dt.
func FixedClock(dt float64) Clock {
	return func(int) float64 { return dt }
}
