package export

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/physics"
	"github.com/san-kum/stardrop/internal/viz"
)

func TestJarToSVG(t *testing.T) {
	shape := container.DefaultShape()
	params := physics.DefaultParams()
	s, err := physics.New(10, shape, params, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	s.AddSettledStar(0, 0.11, 0)
	s.AddSettledStar(0.3, 0.11, 0)
	s.AddStar(0, 2, 0)

	svg := JarToSVG(shape, s, params.EffectiveRadius, 300, 400)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 3 {
		t.Errorf("expected 3 stars, got %d", n)
	}
	if n := strings.Count(svg, settledColor); n != 2 {
		t.Errorf("expected 2 settled stars, got %d", n)
	}
	if strings.Count(svg, "<path") != 1 {
		t.Error("expected one outline path")
	}

	if JarToSVG(shape, s, params.EffectiveRadius, 0, 100) != "" {
		t.Error("zero width should produce nothing")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should produce nothing")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(5, 6)
	svg := CanvasToSVG(c, 3)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `width="24" height="24"`) {
		t.Errorf("unexpected size header: %s", svg[:120])
	}
}
