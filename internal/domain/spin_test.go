package domain_test

import (
	"math"
	"testing"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
)

// sequenceRNG returns values from a pre-set sequence, cycling.
type sequenceRNG struct {
	values []float64
	idx    int
}

func (r *sequenceRNG) Float64() float64 {
	v := r.values[r.idx%len(r.values)]
	r.idx++
	return v
}

func testSegments() [domain.SegmentCount]domain.Segment {
	return domain.BuildSegments(
		domain.Entity{Name: "Lions", Color: "#ff0000"},
		domain.Entity{Name: "Tigers", Color: "#0000ff"},
	)
}

func TestResolve_Scenarios(t *testing.T) {
	segs := testSegments()

	tests := []struct {
		name       string
		target     float64
		normalized float64
		effective  float64
		kind       domain.SegmentKind
	}{
		{"zero rotation", 0, 0, 0, domain.KindEntityA},
		{"150 degrees", 150, 150, 210, domain.KindDraw},
		{"eight spins plus 70", 2950, 70, 290, domain.KindEntityB},
		{"exactly one turn", 360, 0, 0, domain.KindEntityA},
		{"negative rotation", -70, 290, 70, domain.KindEntityA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := domain.Resolve(segs, tt.target)
			if out.NormalizedDeg != tt.normalized {
				t.Errorf("normalized: expected %v, got %v", tt.normalized, out.NormalizedDeg)
			}
			if out.EffectiveDeg != tt.effective {
				t.Errorf("effective: expected %v, got %v", tt.effective, out.EffectiveDeg)
			}
			if out.Segment.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, out.Segment.Kind)
			}
		})
	}
}

func TestWinningIndex_BoundariesBelongToNextSegment(t *testing.T) {
	// effective = 360 - normalized, so normalized 240 puts the pointer
	// exactly on the start of segment 1.
	tests := []struct {
		target float64
		want   int
	}{
		{240, 1},
		{120, 2},
		{360 * 7, 0},
		{360*7 + 240, 1},
	}
	for _, tt := range tests {
		if got := domain.WinningIndex(tt.target); got != tt.want {
			t.Errorf("target %v: expected index %d, got %d", tt.target, tt.want, got)
		}
	}
}

func TestWinningIndex_MatchesFormula(t *testing.T) {
	for deg := -1080.0; deg <= 5000; deg += 0.25 {
		normalized := math.Mod(math.Mod(deg, 360)+360, 360)
		effective := math.Mod(360-normalized, 360)
		want := int(math.Floor(effective/120)) % 3

		got := domain.WinningIndex(deg)
		if got != want {
			t.Fatalf("target %v: expected %d, got %d", deg, want, got)
		}
		if got < 0 || got >= domain.SegmentCount {
			t.Fatalf("target %v: index %d out of range", deg, got)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	segs := testSegments()
	for _, target := range []float64{0, 59.5, 2950, 12345.678} {
		first := domain.Resolve(segs, target)
		second := domain.Resolve(segs, target)
		if first != second {
			t.Errorf("target %v: results differ: %+v vs %+v", target, first, second)
		}
	}
}

func TestNextTarget_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		increment float64
	}{
		{"minimum", []float64{0, 0}, 6 * 360},
		{"middle", []float64{0.5, 0.5}, 7*360 + 180},
		{"maximum", []float64{0.999999, 0.25}, 8*360 + 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &sequenceRNG{values: tt.values}
			target, inc := domain.NextTarget(1000, rng)
			if inc != tt.increment {
				t.Errorf("expected increment %v, got %v", tt.increment, inc)
			}
			if target != 1000+tt.increment {
				t.Errorf("expected target %v, got %v", 1000+tt.increment, target)
			}
		})
	}
}

func TestNormalizeAngle_Range(t *testing.T) {
	for _, deg := range []float64{-720.5, -360, -0.1, 0, 0.1, 359.9, 360, 1e9} {
		n := domain.NormalizeAngle(deg)
		if n < 0 || n >= 360 {
			t.Errorf("NormalizeAngle(%v) = %v, out of [0,360)", deg, n)
		}
	}
}
