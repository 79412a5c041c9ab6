package viz

import (
	"math"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
)

// View maps jar coordinates (x right, y up) onto canvas sub-pixels. The
// scale is uniform so the silhouette keeps its proportions.
type View struct {
	minX, maxY float64
	scale      float64
}

// JarTop is where renderers stop drawing the neck: one shoulder height
// above the top of the shoulder.
func JarTop(shape container.Shape) float64 {
	return shape.ShoulderTop() + math.Max(shape.ShoulderHeight, 0.5)
}

// FitView centres the jar horizontally and fills the canvas height.
func FitView(c *Canvas, shape container.Shape) View {
	const margin = 2
	pw, ph := float64(c.PixelWidth()-2*margin), float64(c.PixelHeight()-2*margin)
	spanX := 2 * shape.BodyRadius
	spanY := JarTop(shape) - shape.FloorHeight
	scale := math.Min(pw/spanX, ph/spanY)

	halfW := float64(c.PixelWidth()) / 2 / scale
	return View{
		minX:  -halfW,
		maxY:  JarTop(shape) + margin/scale,
		scale: scale,
	}
}

// Pixel converts a jar point to sub-pixel coordinates.
func (v View) Pixel(x, y float64) (int, int) {
	return int(math.Round((x - v.minX) * v.scale)), int(math.Round((v.maxY - y) * v.scale))
}

// DrawJar renders a side projection: the silhouette on both sides of the
// axis, the floor, settled stars as solid blocks and falling stars as
// single dots. It only reads through the renderer contract.
func DrawJar(c *Canvas, shape container.Shape, r dynamo.Reader) View {
	v := FitView(c, shape)
	drawOutline(c, v, shape)

	for i := 0; i < r.Count(); i++ {
		p := r.Position(i)
		x, y := v.Pixel(p.X, p.Y)
		if r.IsSettled(i) {
			c.FillRect(x, y-1, 2, 2)
		} else {
			c.Set(x, y)
		}
	}
	return v
}

func drawOutline(c *Canvas, v View, shape container.Shape) {
	pts := shape.Outline(JarTop(shape), c.PixelHeight()/2)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		for _, side := range []float64{-1, 1} {
			x0, y0 := v.Pixel(side*a.R, a.Y)
			x1, y1 := v.Pixel(side*b.R, b.Y)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	x0, y := v.Pixel(-shape.BodyRadius, shape.FloorHeight)
	x1, _ := v.Pixel(shape.BodyRadius, shape.FloorHeight)
	c.DrawLine(x0, y, x1, y)
}
