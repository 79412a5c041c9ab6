package storage

import (
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// StarRecord is one row of stars.csv.
type StarRecord struct {
	Index   int     `csv:"index" json:"index"`
	X       float64 `csv:"x" json:"x"`
	Y       float64 `csv:"y" json:"y"`
	Z       float64 `csv:"z" json:"z"`
	RX      float64 `csv:"rx" json:"rx"`
	RY      float64 `csv:"ry" json:"ry"`
	RZ      float64 `csv:"rz" json:"rz"`
	Settled bool    `csv:"settled" json:"settled"`
}

// TimelineRecord is one row of timeline.csv.
type TimelineRecord struct {
	Frame   int     `csv:"frame" json:"frame"`
	Time    float64 `csv:"time" json:"time"`
	Active  int     `csv:"active" json:"active"`
	Settled int     `csv:"settled" json:"settled"`
	Energy  float64 `csv:"energy" json:"energy"`
}

// Stars is a saved jar. It satisfies dynamo.Reader so renderers can draw
// a stored run without a simulator.
type Stars []StarRecord

func (s Stars) Count() int            { return len(s) }
func (s Stars) Position(i int) r3.Vec { return r3.Vec{X: s[i].X, Y: s[i].Y, Z: s[i].Z} }
func (s Stars) Rotation(i int) r3.Vec { return r3.Vec{X: s[i].RX, Y: s[i].RY, Z: s[i].RZ} }
func (s Stars) IsSettled(i int) bool  { return s[i].Settled }

// Snapshot reads every star through the renderer contract.
func Snapshot(jar dynamo.Reader) Stars {
	stars := make(Stars, jar.Count())
	for i := range stars {
		p := jar.Position(i)
		rot := jar.Rotation(i)
		stars[i] = StarRecord{
			Index:   i,
			X:       p.X,
			Y:       p.Y,
			Z:       p.Z,
			RX:      rot.X,
			RY:      rot.Y,
			RZ:      rot.Z,
			Settled: jar.IsSettled(i),
		}
	}
	return stars
}

func timeline(result *sim.Result) []TimelineRecord {
	records := make([]TimelineRecord, len(result.Times))
	for i := range records {
		records[i] = TimelineRecord{
			Frame:   i,
			Time:    result.Times[i],
			Active:  result.Active[i],
			Settled: result.Settled[i],
			Energy:  result.Energy[i],
		}
	}
	return records
}

// Result rebuilds the per-frame series of a stored timeline.
func Result(meta *RunMetadata, records []TimelineRecord) *sim.Result {
	result := &sim.Result{
		Times:   make([]float64, len(records)),
		Active:  make([]int, len(records)),
		Settled: make([]int, len(records)),
		Energy:  make([]float64, len(records)),
		Metrics: meta.Metrics,
		Frames:  meta.Frames,
	}
	for i, rec := range records {
		result.Times[i] = rec.Time
		result.Active[i] = rec.Active
		result.Settled[i] = rec.Settled
		result.Energy[i] = rec.Energy
	}
	return result
}
