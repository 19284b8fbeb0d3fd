package domain

import "math"

const (
	MinWheelSize = 320
	MaxWheelSize = 640

	minLabelWidth = 105
	maxLabelWidth = 160
	minFontSize   = 14
	maxFontSize   = 22
	minHubSize    = 64
	maxHubSize    = 92
)

// LabelGeometry sizes the text boxes drawn on each segment.
type LabelGeometry struct {
	Radius   int `json:"radius"`
	Width    int `json:"width"`
	FontSize int `json:"font_size"`
}

// LabelPlacement is the center of a segment label in wheel-local pixels,
// with the origin at the wheel's top-left corner.
type LabelPlacement struct {
	Segment  int     `json:"segment"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	AngleDeg float64 `json:"angle_deg"`
}

// Geometry is everything a renderer needs to lay out the wheel.
type Geometry struct {
	ContainerWidth int              `json:"container_width"`
	Size           int              `json:"size"`
	Label          LabelGeometry    `json:"label"`
	HubSize        int              `json:"hub_size"`
	Labels         []LabelPlacement `json:"labels"`
}

// WheelSize maps the observed container width to the wheel diameter.
func WheelSize(containerWidth int) int {
	return clamp(int(math.Floor(float64(containerWidth)*0.98)), MinWheelSize, MaxWheelSize)
}

// LabelGeometryFor derives the label box from the wheel size.
func LabelGeometryFor(size int) LabelGeometry {
	return LabelGeometry{
		Radius:   round(float64(size) * 0.38),
		Width:    clamp(round(float64(size)*0.34), minLabelWidth, maxLabelWidth),
		FontSize: clamp(round(float64(size)*0.048), minFontSize, maxFontSize),
	}
}

// HubSize returns the diameter of the center hub.
func HubSize(size int) int {
	return clamp(round(float64(size)*0.19), minHubSize, maxHubSize)
}

// LabelPlacements puts each label on its segment's bisector at the label
// radius. Angles are clockwise from the top, matching segment spans.
func LabelPlacements(size int) []LabelPlacement {
	radius := float64(LabelGeometryFor(size).Radius)
	center := float64(size) / 2

	out := make([]LabelPlacement, SegmentCount)
	for i := range SegmentCount {
		angle := (float64(i) + 0.5) * SegmentSpanDeg
		rad := angle * math.Pi / 180
		out[i] = LabelPlacement{
			Segment:  i,
			X:        center + radius*math.Sin(rad),
			Y:        center - radius*math.Cos(rad),
			AngleDeg: angle,
		}
	}
	return out
}

// GeometryFor bundles every derived measurement for a container width.
func GeometryFor(containerWidth int) Geometry {
	return geometryForSize(containerWidth, WheelSize(containerWidth))
}

// DefaultGeometry is used until the first valid resize report arrives.
func DefaultGeometry() Geometry {
	return geometryForSize(0, MaxWheelSize)
}

func geometryForSize(containerWidth, size int) Geometry {
	return Geometry{
		ContainerWidth: containerWidth,
		Size:           size,
		Label:          LabelGeometryFor(size),
		HubSize:        HubSize(size),
		Labels:         LabelPlacements(size),
	}
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
