package sim

import (
	"math"
	"testing"
)

func TestHeadingDeg(t *testing.T) {
	cases := []struct {
		name   string
		dx, dz float64
		want   float64
	}{
		{name: "forward", dx: 0, dz: 1, want: 0},
		{name: "right", dx: 1, dz: 0, want: 90},
		{name: "back", dx: 0, dz: -1, want: 180},
		{name: "left", dx: -1, dz: 0, want: 270},
		{name: "diagonal", dx: 1, dz: 1, want: 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := headingDeg(tc.dx, tc.dz)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("headingDeg(%v, %v) = %v, want %v", tc.dx, tc.dz, got, tc.want)
			}
		})
	}
}

func TestRotateTowardDegClampsStep(t *testing.T) {
	got := rotateTowardDeg(0, 90, 10)
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("expected clamped turn to 10, got %v", got)
	}
}

func TestRotateTowardDegReachesTarget(t *testing.T) {
	got := rotateTowardDeg(85, 90, 10)
	if math.Abs(got-90) > 1e-9 {
		t.Fatalf("expected target reached, got %v", got)
	}
}

func TestRotateTowardDegTakesShortWayAroundWrap(t *testing.T) {
	got := rotateTowardDeg(350, 10, 5)
	if math.Abs(got-355) > 1e-9 {
		t.Fatalf("expected turn through the wrap to 355, got %v", got)
	}
	got = rotateTowardDeg(10, 350, 5)
	if math.Abs(got-5) > 1e-9 {
		t.Fatalf("expected turn through the wrap to 5, got %v", got)
	}
}

func TestAngleDiffDegRange(t *testing.T) {
	if diff := angleDiffDeg(0, 180); diff != 180 {
		t.Fatalf("expected half turn to resolve positive, got %v", diff)
	}
	if diff := angleDiffDeg(0, 190); math.Abs(diff-(-170)) > 1e-9 {
		t.Fatalf("expected -170, got %v", diff)
	}
}
