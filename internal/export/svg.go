package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/viz"
)

const (
	background   = "#0a0a1a"
	glassColor   = "#8899cc"
	settledColor = "#ffd700"
	fallingColor = "#ff8800"
)

// JarToSVG draws a side cross-section of the jar: the silhouette as one
// closed path and every star as a circle of the collision radius.
func JarToSVG(shape container.Shape, r dynamo.Reader, radius float64, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	top := viz.JarTop(shape)
	minX, maxX := -shape.BodyRadius, shape.BodyRadius
	minY, maxY := shape.FloorHeight, top

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	scale := min(float64(width)/rangeX, float64(height)/rangeY)
	offX := (float64(width) - rangeX*scale) / 2
	offY := (float64(height) - rangeY*scale) / 2
	px := func(x float64) float64 { return offX + (x-minX)*scale }
	py := func(y float64) float64 { return float64(height) - offY - (y-minY)*scale }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	// Left wall top to bottom, floor, right wall bottom to top.
	outline := shape.Outline(top, 64)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, glassColor))
	for i := len(outline) - 1; i >= 0; i-- {
		p := outline[i]
		if i != len(outline)-1 {
			sb.WriteString(" L")
		}
		sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(-p.R), py(p.Y)))
	}
	for _, p := range outline {
		sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(p.R), py(p.Y)))
	}
	sb.WriteString(`"/>
`)

	sb.WriteString("<g>\n")
	rad := radius * scale
	for i := 0; i < r.Count(); i++ {
		p := r.Position(i)
		fill := fallingColor
		if r.IsSettled(i) {
			fill = settledColor
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, px(p.X), py(p.Y), rad, fill))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, settledColor))

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
