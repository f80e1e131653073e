// Package board provides the hex grid, the settlement graph of corners and
// roads, and the one-shot board generator.
// Uses cube coordinates (q, r, s) with q+r+s = 0.
package board

import (
	"fmt"
	"math"
)

// Coord is a position on the hex grid in cube coordinates.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// NewCoord builds a coordinate from axial q and r; s is derived.
func NewCoord(q, r int) Coord {
	return Coord{Q: q, R: r, S: -q - r}
}

// Valid reports whether the cube constraint q+r+s = 0 holds.
func (c Coord) Valid() bool {
	return c.Q+c.R+c.S == 0
}

// Add returns the component-wise sum.
func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R, S: c.S + o.S}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Q, c.R, c.S)
}

// Directions defines the six neighbour offsets in canonical order:
//
//	 4 5
//	3 T 0
//	 2 1
var Directions = [6]Coord{
	{Q: 1, R: 0, S: -1},
	{Q: 0, R: 1, S: -1},
	{Q: -1, R: 1, S: 0},
	{Q: -1, R: 0, S: 1},
	{Q: 0, R: -1, S: 1},
	{Q: 1, R: -1, S: 0},
}

// Neighbors returns the six adjacent coordinates in Directions order.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, dir := range Directions {
		result[i] = c.Add(dir)
	}
	return result
}

// Length returns the hex distance from the origin.
func (c Coord) Length() int {
	return max(abs(c.Q), abs(c.R), abs(c.S))
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coord) int {
	return Coord{Q: a.Q - b.Q, R: a.R - b.R, S: a.S - b.S}.Length()
}

// Center returns the cartesian centre of the hex with unit spacing.
func (c Coord) Center() (x, y float64) {
	x = float64(c.Q) + float64(c.R)*0.5
	y = float64(c.R) * math.Sqrt(3.0) / 2.0
	return x, y
}

// MinCoord returns the component-wise minimum. Panics on empty input.
func MinCoord(coords ...Coord) Coord {
	if len(coords) == 0 {
		panic("board: MinCoord of no coordinates")
	}
	out := coords[0]
	for _, c := range coords[1:] {
		out.Q = min(out.Q, c.Q)
		out.R = min(out.R, c.R)
		out.S = min(out.S, c.S)
	}
	return out
}

// MaxCoord returns the component-wise maximum. Panics on empty input.
func MaxCoord(coords ...Coord) Coord {
	if len(coords) == 0 {
		panic("board: MaxCoord of no coordinates")
	}
	out := coords[0]
	for _, c := range coords[1:] {
		out.Q = max(out.Q, c.Q)
		out.R = max(out.R, c.R)
		out.S = max(out.S, c.S)
	}
	return out
}

// compareCoords orders coordinates by q, then r, then s.
func compareCoords(a, b Coord) int {
	switch {
	case a.Q != b.Q:
		return a.Q - b.Q
	case a.R != b.R:
		return a.R - b.R
	default:
		return a.S - b.S
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
