package common

import "math"

// Vec is a point or direction in screen space: X grows right, Y grows down.
type Vec struct {
	X, Y float64
}

// Up points away from gravity in screen space.
var Up = Vec{X: 0, Y: -1}

func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vec) Normalize() Vec {
	l := v.Length()
	if l == 0 {
		return Vec{}
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// Perp returns v rotated a quarter turn counter-clockwise in screen space.
func (v Vec) Perp() Vec {
	return Vec{X: v.Y, Y: -v.X}
}

// Project returns the component of v along the (not necessarily unit) axis.
func (v Vec) Project(axis Vec) Vec {
	lsq := axis.LengthSq()
	if lsq == 0 {
		return Vec{}
	}
	return axis.Scale(v.Dot(axis) / lsq)
}

func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
