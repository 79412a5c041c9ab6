package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// Band counts settled stars with floor+Lo <= y < floor+Hi.
type Band struct {
	Lo, Hi float64
	Count  int
}

// HeightProfile splits the container from the floor to the top of the
// shoulder into equal bands and counts settled stars in each.
func HeightProfile(r dynamo.Reader, shape container.Shape, bands int) []Band {
	if bands <= 0 {
		return nil
	}
	height := shape.ShoulderTop() - shape.FloorHeight
	width := height / float64(bands)

	out := make([]Band, bands)
	for i := range out {
		out[i] = Band{Lo: float64(i) * width, Hi: float64(i+1) * width}
	}
	for i := 0; i < r.Count(); i++ {
		if !r.IsSettled(i) {
			continue
		}
		b := int((r.Position(i).Y - shape.FloorHeight) / width)
		b = max(0, min(b, bands-1))
		out[b].Count++
	}
	return out
}

// FillLevel is the height above the floor below which 90% of settled stars
// rest. It ignores the odd star perched on top of the pile.
func FillLevel(r dynamo.Reader, shape container.Shape) float64 {
	heights := make([]float64, 0, r.Count())
	for i := 0; i < r.Count(); i++ {
		if r.IsSettled(i) {
			heights = append(heights, r.Position(i).Y-shape.FloorHeight)
		}
	}
	if len(heights) == 0 {
		return 0
	}
	sort.Float64s(heights)
	return stat.Quantile(0.9, stat.Empirical, heights, nil)
}

// ProfileToASCII draws one bar per band, top of the jar first.
func ProfileToASCII(bands []Band, width int) string {
	if len(bands) == 0 || width <= 0 {
		return ""
	}
	peak := 0
	for _, b := range bands {
		peak = max(peak, b.Count)
	}
	if peak == 0 {
		peak = 1
	}

	var sb strings.Builder
	for i := len(bands) - 1; i >= 0; i-- {
		n := int(math.Round(float64(bands[i].Count) / float64(peak) * float64(width)))
		sb.WriteString(strings.Repeat("█", n))
		sb.WriteString(strings.Repeat(" ", width-n))
		sb.WriteString("|\n")
	}
	return sb.String()
}
