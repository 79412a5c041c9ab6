package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/sim"
)

// SweepPoint is the outcome of one run at one parameter value.
type SweepPoint struct {
	Param   float64
	Settle  SettleSummary
	Settled int
	Metrics map[string]float64
}

// SweepBuilder returns a fresh runner configured for param.
type SweepBuilder func(param float64) (*sim.Runner, error)

// Sweep runs the scene once for each of steps evenly spaced values in
// [lo, hi]. Runs are sequential so each one sees the same seed.
func Sweep(ctx context.Context, build SweepBuilder, scene config.SceneConfig, lo, hi float64, steps int) ([]SweepPoint, error) {
	if steps < 2 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := lo + float64(i)*step
		r, err := build(param)
		if err != nil {
			return points, fmt.Errorf("param %g: %w", param, err)
		}
		result, err := r.Run(ctx, scene)
		if err != nil {
			return points, fmt.Errorf("param %g: %w", param, err)
		}

		settled := 0
		if n := len(result.Settled); n > 0 {
			settled = result.Settled[n-1]
		}
		points = append(points, SweepPoint{
			Param:   param,
			Settle:  SummarizeSettle(result.SettleFrames),
			Settled: settled,
			Metrics: result.Metrics,
		})
	}
	return points, nil
}

// SweepToASCII plots mean settle frames against the swept parameter.
func SweepToASCII(points []SweepPoint, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := points[0].Settle.Mean, points[0].Settle.Mean
	for _, p := range points[1:] {
		minVal = min(minVal, p.Settle.Mean)
		maxVal = max(maxVal, p.Settle.Mean)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range points {
		col := min(i*width/len(points), width-1)
		row := height - 1 - int((p.Settle.Mean-minVal)/(maxVal-minVal)*float64(height-1))
		if row >= 0 && row < height {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
