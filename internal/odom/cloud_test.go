package odom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPointChannelDecoding(t *testing.T) {
	tests := []struct {
		channel  float64
		ring     int
		fraction float64
	}{
		{0, 0, 0},
		{3.05, 3, 0.5},
		{7.1, 7, 1.0},
		{15.025, 15, 0.25},
	}
	for _, tt := range tests {
		p := Point{Channel: tt.channel}
		if got := p.Ring(); got != tt.ring {
			t.Errorf("Ring(%v) = %d, want %d", tt.channel, got, tt.ring)
		}
		if got := p.SweepFraction(); math.Abs(got-tt.fraction) > 1e-9 {
			t.Errorf("SweepFraction(%v) = %v, want %v", tt.channel, got, tt.fraction)
		}
	}
}

func TestSquaredDiffIgnoresChannel(t *testing.T) {
	a := Point{X: 1, Y: 2, Z: 3, Channel: 5.1}
	b := Point{X: 2, Y: 4, Z: 6, Channel: 0}
	if got := SquaredDiff(a, b); got != 14 {
		t.Errorf("SquaredDiff = %v, want 14", got)
	}
}

func TestRemoveNonFinite(t *testing.T) {
	nan := math.NaN()
	c := Cloud{
		{X: 1, Y: 1, Z: 1, Channel: 0.01},
		{X: nan, Y: 1, Z: 1},
		{X: 2, Y: math.Inf(1), Z: 1},
		{X: 3, Y: 3, Z: 3, Channel: 1.05},
		{X: 4, Y: 4, Z: math.Inf(-1)},
	}

	got := c.RemoveNonFinite()
	want := Cloud{
		{X: 1, Y: 1, Z: 1, Channel: 0.01},
		{X: 3, Y: 3, Z: 3, Channel: 1.05},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RemoveNonFinite mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := Cloud{{X: 1}, {X: 2}}
	d := c.Clone()
	d[0].X = 99
	if c[0].X != 1 {
		t.Error("Clone shares backing array with source")
	}
}
