package tui

import (
	"fmt"
	"strconv"
	"strings"
)

// CubicBezier is a CSS-style timing curve with fixed endpoints (0,0) and (1,1).
type CubicBezier struct {
	X1, Y1, X2, Y2 float64
}

// ParseCubicBezier reads "cubic-bezier(x1, y1, x2, y2)".
func ParseCubicBezier(s string) (CubicBezier, error) {
	s = strings.TrimSpace(s)
	inner, ok := strings.CutPrefix(s, "cubic-bezier(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return CubicBezier{}, fmt.Errorf("not a cubic-bezier: %q", s)
	}
	parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
	if len(parts) != 4 {
		return CubicBezier{}, fmt.Errorf("cubic-bezier needs 4 values, got %d", len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return CubicBezier{}, fmt.Errorf("cubic-bezier value %d: %w", i, err)
		}
		v[i] = f
	}
	if v[0] < 0 || v[0] > 1 || v[2] < 0 || v[2] > 1 {
		return CubicBezier{}, fmt.Errorf("cubic-bezier x values must be in [0,1]: %q", s)
	}
	return CubicBezier{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func bezier(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func bezierSlope(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

// At maps animation progress x in [0,1] to eased progress.
func (c CubicBezier) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// Newton first, bisection when the slope flattens out.
	t := x
	for range 8 {
		dx := bezier(t, c.X1, c.X2) - x
		slope := bezierSlope(t, c.X1, c.X2)
		if dx > -1e-7 && dx < 1e-7 {
			return bezier(t, c.Y1, c.Y2)
		}
		if slope > -1e-6 && slope < 1e-6 {
			break
		}
		t -= dx / slope
	}

	lo, hi := 0.0, 1.0
	t = x
	for range 50 {
		cur := bezier(t, c.X1, c.X2)
		if cur > x-1e-7 && cur < x+1e-7 {
			break
		}
		if cur < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bezier(t, c.Y1, c.Y2)
}
