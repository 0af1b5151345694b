// Package core provides fundamental types and utilities for the arcade platform.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "math"

// Vec is a 2D vector in field coordinates (cells).
type Vec struct {
	X, Y float64
}

// V is shorthand for constructing a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Norm returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vec) Perp() Vec {
	return Vec{X: -v.Y, Y: v.X}
}

// Rect represents an axis-aligned bounding box used for collision detection.
type Rect struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectAround creates a rectangle of the given size centred on c.
func RectAround(c Vec, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
// Touching edges do not count as overlap.
func (r Rect) Intersects(other Rect) bool {
	// No overlap if one rect is completely to the left, right, above, or below
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Contains returns true if the point p is inside this rectangle.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Vec {
	return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Expand scales the rectangle about its centre. Factors below 1 are treated as 1
// so leniency never shrinks a hitbox.
func (r Rect) Expand(factor float64) Rect {
	if factor <= 1 {
		return r
	}
	return RectAround(r.Center(), r.W*factor, r.H*factor)
}

// Translate returns the rectangle moved by d.
func (r Rect) Translate(d Vec) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// Corners returns the four corners clockwise from top-left.
func (r Rect) Corners() [4]Vec {
	return [4]Vec{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
	}
}

// Circle is a centre and radius.
type Circle struct {
	C Vec
	R float64
}

// Overlaps returns true if the two circles overlap.
func (c Circle) Overlaps(o Circle) bool {
	minDist := c.R + o.R
	d := c.C.Sub(o.C)
	return d.Dot(d) < minDist*minDist
}

// OverlapsRect returns true if the circle overlaps the rectangle.
func (c Circle) OverlapsRect(r Rect) bool {
	nearest := Vec{
		X: ClampF(c.C.X, r.X, r.Right()),
		Y: ClampF(c.C.Y, r.Y, r.Bottom()),
	}
	d := c.C.Sub(nearest)
	return d.Dot(d) < c.R*c.R
}

// Contains returns true if p lies inside the circle.
func (c Circle) Contains(p Vec) bool {
	d := p.Sub(c.C)
	return d.Dot(d) <= c.R*c.R
}

// OBB is an oriented rectangle that starts at Origin and extends Length along
// the unit direction Dir, with total Width across it. It models thrown or
// extending effects such as a tongue or a slash.
type OBB struct {
	Origin Vec
	Dir    Vec
	Length float64
	Width  float64
}

// Corners returns the four corners of the box.
func (b OBB) Corners() [4]Vec {
	d := b.Dir.Norm()
	n := d.Perp().Scale(b.Width / 2)
	tip := b.Origin.Add(d.Scale(b.Length))
	return [4]Vec{
		b.Origin.Add(n),
		tip.Add(n),
		tip.Sub(n),
		b.Origin.Sub(n),
	}
}

// OverlapsCircle returns true if the box overlaps the circle. The circle
// centre is projected into box-local coordinates and clamped.
func (b OBB) OverlapsCircle(c Circle) bool {
	if b.Length <= 0 {
		return false
	}
	d := b.Dir.Norm()
	n := d.Perp()
	rel := c.C.Sub(b.Origin)
	along := ClampF(rel.Dot(d), 0, b.Length)
	across := ClampF(rel.Dot(n), -b.Width/2, b.Width/2)
	nearest := b.Origin.Add(d.Scale(along)).Add(n.Scale(across))
	diff := c.C.Sub(nearest)
	return diff.Dot(diff) < c.R*c.R
}

// OverlapsRect returns true if the box overlaps the axis-aligned rectangle,
// using the separating axis test over both shapes' edge normals.
func (b OBB) OverlapsRect(r Rect) bool {
	if b.Length <= 0 {
		return false
	}
	d := b.Dir.Norm()
	axes := [4]Vec{{1, 0}, {0, 1}, d, d.Perp()}
	bc := b.Corners()
	rc := r.Corners()
	for _, axis := range axes {
		bmin, bmax := project(bc, axis)
		rmin, rmax := project(rc, axis)
		if bmax <= rmin || rmax <= bmin {
			return false
		}
	}
	return true
}

func project(pts [4]Vec, axis Vec) (lo, hi float64) {
	lo = pts[0].Dot(axis)
	hi = lo
	for _, p := range pts[1:] {
		v := p.Dot(axis)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
