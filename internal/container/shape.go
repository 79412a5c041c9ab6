// Package container describes the vessel the stars fall into.
package container

import "github.com/san-kum/stardrop/internal/dynamo"

const (
	DefaultBodyRadius        = 1.0
	DefaultBottomCurveHeight = 0.3
	DefaultBodyHeight        = 2.2
	DefaultShoulderHeight    = 0.6
	DefaultNeckRadius        = 0.45
	DefaultFloorHeight       = 0.0
)

// Shape is the bottle silhouette. Heights are measured upward from FloorHeight.
type Shape struct {
	BodyRadius        float64 `yaml:"body_radius" json:"body_radius"`
	BottomCurveHeight float64 `yaml:"bottom_curve_height" json:"bottom_curve_height"`
	BodyHeight        float64 `yaml:"body_height" json:"body_height"`
	ShoulderHeight    float64 `yaml:"shoulder_height" json:"shoulder_height"`
	NeckRadius        float64 `yaml:"neck_radius" json:"neck_radius"`
	FloorHeight       float64 `yaml:"floor_height" json:"floor_height"`
}

func DefaultShape() Shape {
	return Shape{
		BodyRadius:        DefaultBodyRadius,
		BottomCurveHeight: DefaultBottomCurveHeight,
		BodyHeight:        DefaultBodyHeight,
		ShoulderHeight:    DefaultShoulderHeight,
		NeckRadius:        DefaultNeckRadius,
		FloorHeight:       DefaultFloorHeight,
	}
}

// BodyTop is the height where the shoulder taper begins.
func (s Shape) BodyTop() float64 {
	return s.FloorHeight + s.BottomCurveHeight + s.BodyHeight
}

// ShoulderTop is the height where the neck begins.
func (s Shape) ShoulderTop() float64 {
	return s.BodyTop() + s.ShoulderHeight
}

// Radius returns the permitted horizontal radius at height y.
func (s Shape) Radius(y float64) float64 {
	bodyTop := s.BodyTop()
	if y <= bodyTop {
		return s.BodyRadius
	}
	if s.ShoulderHeight <= 0 || y >= bodyTop+s.ShoulderHeight {
		return s.NeckRadius
	}
	t := (y - bodyTop) / s.ShoulderHeight
	return s.BodyRadius + (s.NeckRadius-s.BodyRadius)*t
}

func (s Shape) Validate() error {
	if s.BodyRadius <= 0 {
		return dynamo.ConfigError("body radius must be positive, got %f", s.BodyRadius)
	}
	if s.NeckRadius <= 0 || s.NeckRadius >= s.BodyRadius {
		return dynamo.ConfigError("neck radius must be in (0, body radius), got %f", s.NeckRadius)
	}
	if s.BottomCurveHeight < 0 || s.BodyHeight < 0 || s.ShoulderHeight < 0 {
		return dynamo.ConfigError("container heights must be non-negative")
	}
	return nil
}

// ProfilePoint is one sample of the silhouette.
type ProfilePoint struct {
	Y, R float64
}

// Outline samples the silhouette from the floor to top, inclusive.
func (s Shape) Outline(top float64, samples int) []ProfilePoint {
	if samples < 2 {
		samples = 2
	}
	pts := make([]ProfilePoint, samples)
	span := top - s.FloorHeight
	for i := range pts {
		y := s.FloorHeight + span*float64(i)/float64(samples-1)
		pts[i] = ProfilePoint{Y: y, R: s.Radius(y)}
	}
	return pts
}
