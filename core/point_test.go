package core

import (
	"math"
	"testing"
)

func TestDirectionTo_RoundTrip(t *testing.T) {
	origin := Point{5, 5}
	for d := int8(0); d < DirCount; d++ {
		n := origin.Add(DirVectors[d])
		if got := origin.DirectionTo(n); got != d {
			t.Errorf("direction %d: got %d", d, got)
		}
		if !origin.Adjacent(n) {
			t.Errorf("direction %d: %v not adjacent to %v", d, n, origin)
		}
	}
	if got := origin.DirectionTo(Point{7, 5}); got != DirNone {
		t.Errorf("expected DirNone for non-adjacent cell, got %d", got)
	}
	if origin.Adjacent(origin) {
		t.Error("a cell is not adjacent to itself")
	}
}

func TestOctile(t *testing.T) {
	tests := []struct {
		a, b Point
		want float64
	}{
		{Point{0, 0}, Point{0, 0}, 0},
		{Point{0, 0}, Point{3, 0}, 3},
		{Point{0, 0}, Point{3, 3}, 3 * math.Sqrt2},
		{Point{1, 1}, Point{6, 3}, 3 + 2*math.Sqrt2},
	}
	for _, tt := range tests {
		if got := Octile(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Octile(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPathLengthAndInvalidMoves(t *testing.T) {
	path := []Point{{0, 0}, {1, 1}, {2, 1}, {4, 1}}

	want := math.Sqrt2 + 1 + 2
	if got := PathLength(path); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected length %v, got %v", want, got)
	}
	if got := CountInvalidMoves(path); got != 1 {
		t.Errorf("expected 1 invalid move, got %d", got)
	}
	if PathLength(nil) != 0 || CountInvalidMoves(path[:1]) != 0 {
		t.Error("empty and single-cell paths have no length and no moves")
	}
}
