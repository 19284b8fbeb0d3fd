package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

// Terminal cells are treated as 8x16 pixel boxes when feeding the geometry
// engine and when mapping wheel pixels back onto the grid.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
	statusRows   = 4
	pointerRune  = '▼'
)

// layout places a wheel of the engine's pixel size on the terminal grid,
// scaled down when the terminal is too short to hold it.
type layout struct {
	cx, cy   int
	scale    float64
	radiusPx float64
	hubPx    float64
	rowsUsed int
}

func newLayout(cols, rows int, g domain.Geometry) layout {
	size := float64(g.Size)
	scale := 1.0
	if avail := float64((rows-statusRows-2)*cellHeightPx) / size; avail < scale {
		scale = avail
	}
	if avail := float64(cols*cellWidthPx) / size; avail < scale {
		scale = avail
	}
	if scale < 0 {
		scale = 0
	}

	radius := size * scale / 2
	radiusRows := int(radius / cellHeightPx)
	return layout{
		cx:       cols / 2,
		cy:       radiusRows + 1,
		scale:    scale,
		radiusPx: radius,
		hubPx:    float64(g.HubSize) * scale / 2,
		rowsUsed: 2*radiusRows + 2,
	}
}

// cellAngle returns the screen angle of cell (x, y), clockwise from the top,
// and its distance from the center in pixels.
func (l layout) cellAngle(x, y int) (deg, dist float64) {
	dx := float64(x-l.cx) * cellWidthPx
	dy := float64(y-l.cy) * cellHeightPx
	return math.Atan2(dx, -dy) * 180 / math.Pi, math.Hypot(dx, dy)
}

// segmentAt returns the segment under a screen angle for a wheel rotated
// clockwise by rotation degrees.
func segmentAt(screenDeg, rotation float64) int {
	local := domain.NormalizeAngle(screenDeg - rotation)
	return int(local/domain.SegmentSpanDeg) % domain.SegmentCount
}

func segmentStyle(s domain.Segment) tcell.Style {
	return tcell.StyleDefault.Background(tcell.GetColor(s.Color)).Foreground(tcell.ColorWhite)
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func drawWheel(s tcell.Screen, st domain.State, rotation float64) layout {
	cols, rows := s.Size()
	l := newLayout(cols, rows, st.Geometry)
	if l.radiusPx <= 0 {
		return l
	}

	rr := int(l.radiusPx / cellHeightPx)
	rc := int(l.radiusPx / cellWidthPx)
	hub := tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)

	for y := l.cy - rr; y <= l.cy+rr; y++ {
		for x := l.cx - rc; x <= l.cx+rc; x++ {
			deg, dist := l.cellAngle(x, y)
			if dist > l.radiusPx {
				continue
			}
			if dist <= l.hubPx {
				s.SetContent(x, y, ' ', nil, hub)
				continue
			}
			s.SetContent(x, y, ' ', nil, segmentStyle(st.Segments[segmentAt(deg, rotation)]))
		}
	}

	s.SetContent(l.cx, l.cy-rr-1, pointerRune, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))

	for _, p := range st.Geometry.Labels {
		seg := st.Segments[p.Segment]
		a := (p.AngleDeg + rotation) * math.Pi / 180
		r := float64(st.Geometry.Label.Radius) * l.scale
		col := l.cx + int(math.Round(r*math.Sin(a)/cellWidthPx))
		row := l.cy + int(math.Round(-r*math.Cos(a)/cellHeightPx))

		text := truncate(seg.Label, int(float64(st.Geometry.Label.Width)*l.scale/cellWidthPx))
		drawText(s, col-len([]rune(text))/2, row, text, segmentStyle(seg).Bold(true))
	}
	return l
}

func truncate(s string, max int) string {
	if max < 1 {
		max = 1
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}

// statusLines describes the wheel below the drawing.
func statusLines(st domain.State, editing domain.Side, buf []rune, notice string) []string {
	lines := []string{
		fmt.Sprintf("A: %s   vs   B: %s", st.EntityA.Name, st.EntityB.Name),
	}

	switch st.Phase {
	case domain.PhaseSpinning:
		lines = append(lines, "Spinning...")
	case domain.PhaseResolved:
		lines = append(lines, "...")
	case domain.PhaseRevealed:
		if st.Outcome != nil && st.Outcome.Segment.Kind == domain.KindDraw {
			lines = append(lines, "It's a DRAW!   [space] spin again  [esc] dismiss")
		} else if st.Outcome != nil {
			lines = append(lines, fmt.Sprintf("Winner: %s   [space] spin again  [esc] dismiss", st.Outcome.Segment.Label))
		}
	default:
		if st.CanSpin {
			lines = append(lines, "[space] spin")
		} else {
			lines = append(lines, "Rename both sides to spin")
		}
	}

	if editing != "" {
		lines = append(lines, fmt.Sprintf("Name for %s: %s_   [enter] save  [esc] cancel", editing, string(buf)))
	} else {
		lines = append(lines, "[a]/[b] rename  [q] quit")
	}
	if notice != "" {
		lines = append(lines, notice)
	}
	return lines
}
