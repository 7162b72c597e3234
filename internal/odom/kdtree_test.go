package odom

import (
	"math"
	"testing"
)

func TestNeighborIndexNearest(t *testing.T) {
	c := Cloud{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 2, Z: 0},
		{X: 0, Y: 0, Z: 3},
		{X: -1, Y: -1, Z: -1},
	}
	ni := NewNeighborIndex(c)

	if ni.Len() != len(c) {
		t.Fatalf("Len = %d, want %d", ni.Len(), len(c))
	}

	tests := []struct {
		x, y, z float64
		idx     int
		sqDist  float64
	}{
		{0.1, 0, 0, 0, 0.01},
		{1.2, 0.1, 0, 1, 0.05},
		{0, 1.8, 0, 2, 0.04},
		{-1, -1, -1, 4, 0},
	}
	for _, tt := range tests {
		idx, d := ni.Nearest(tt.x, tt.y, tt.z)
		if idx != tt.idx {
			t.Errorf("Nearest(%v, %v, %v) idx = %d, want %d", tt.x, tt.y, tt.z, idx, tt.idx)
		}
		if math.Abs(d-tt.sqDist) > 1e-9 {
			t.Errorf("Nearest(%v, %v, %v) sqDist = %v, want %v", tt.x, tt.y, tt.z, d, tt.sqDist)
		}
	}
}

func TestNeighborIndexEmpty(t *testing.T) {
	ni := NewNeighborIndex(nil)
	idx, d := ni.Nearest(1, 2, 3)
	if idx != -1 {
		t.Errorf("empty index Nearest idx = %d, want -1", idx)
	}
	if !math.IsInf(d, 1) {
		t.Errorf("empty index Nearest sqDist = %v, want +Inf", d)
	}
}

// The index snapshots coordinates at build time, so later mutation of the
// source cloud must not change query results.
func TestNeighborIndexSnapshots(t *testing.T) {
	c := Cloud{{X: 1, Y: 1, Z: 1}, {X: 5, Y: 5, Z: 5}}
	ni := NewNeighborIndex(c)

	c[0].X = 100
	idx, _ := ni.Nearest(1, 1, 1)
	if idx != 0 {
		t.Errorf("Nearest after mutation idx = %d, want 0", idx)
	}
}
