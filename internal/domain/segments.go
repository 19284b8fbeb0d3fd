package domain

import "strings"

const (
	SegmentCount   = 3
	SegmentSpanDeg = 360.0 / SegmentCount

	DrawLabel = "DRAW"
	DrawColor = "#9e9e9e"
)

// BuildSegments lays out entity A, the draw and entity B clockwise from 0°.
// Labels come from the live entity names; the draw slice is fixed.
func BuildSegments(a, b Entity) [SegmentCount]Segment {
	slices := [SegmentCount]struct {
		label string
		kind  SegmentKind
		color string
	}{
		{strings.TrimSpace(a.Name), KindEntityA, a.Color},
		{DrawLabel, KindDraw, DrawColor},
		{strings.TrimSpace(b.Name), KindEntityB, b.Color},
	}

	var segs [SegmentCount]Segment
	for i, sl := range slices {
		segs[i] = Segment{
			Index:    i,
			Label:    sl.label,
			Kind:     sl.kind,
			Color:    sl.color,
			StartDeg: float64(i) * SegmentSpanDeg,
			EndDeg:   float64(i+1) * SegmentSpanDeg,
		}
	}
	return segs
}
