package metrics

import (
	"github.com/san-kum/stardrop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// KineticEnergyOf returns the total translational kinetic energy of all
// Dynamic stars, taking unit mass.
func KineticEnergyOf(r dynamo.VelocityReader) float64 {
	total := 0.0
	for i := 0; i < r.Count(); i++ {
		if r.IsSettled(i) {
			continue
		}
		total += 0.5 * r3.Norm2(r.Velocity(i))
	}
	return total
}

// PeakEnergy tracks the largest kinetic energy seen during a run.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_energy"}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(r dynamo.Reader, t float64) {
	vr, ok := r.(dynamo.VelocityReader)
	if !ok {
		return
	}
	if k := KineticEnergyOf(vr); k > e.peak {
		e.peak = k
	}
}

func (e *PeakEnergy) Value() float64 { return e.peak }
func (e *PeakEnergy) Reset()         { e.peak = 0 }
