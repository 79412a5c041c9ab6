package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/sim"
)

type ExportData struct {
	Name         string             `json:"name"`
	Seed         int64              `json:"seed"`
	FrameDt      float64            `json:"frame_dt"`
	Frames       int                `json:"frames"`
	Dropped      int                `json:"dropped"`
	Times        []float64          `json:"times"`
	Active       []int              `json:"active"`
	Settled      []int              `json:"settled"`
	Energy       []float64          `json:"energy"`
	SettleFrames []float64          `json:"settle_frames"`
	Metrics      map[string]float64 `json:"metrics"`
	Stars        Stars              `json:"stars"`
}

func ExportJSON(w io.Writer, cfg *config.Config, jar dynamo.Reader, result *sim.Result) error {
	data := ExportData{
		Name:         cfg.Name,
		Seed:         cfg.Seed,
		FrameDt:      cfg.Scene.FrameDt,
		Frames:       result.Frames,
		Dropped:      result.Dropped,
		Times:        result.Times,
		Active:       result.Active,
		Settled:      result.Settled,
		Energy:       result.Energy,
		SettleFrames: result.SettleFrames,
		Metrics:      result.Metrics,
		Stars:        Snapshot(jar),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
