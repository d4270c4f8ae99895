// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
)

// Vec2 is a position or direction in world coordinates.
// The coordinate system has y increasing downward.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (vec Vec2) Mul(factor float64) Vec2 {
	vec.X *= factor
	vec.Y *= factor
	return vec
}

func (vec Vec2) Div(divisor float64) Vec2 {
	return vec.Mul(1.0 / divisor)
}

func (vec Vec2) Add(otherVec Vec2) Vec2 {
	vec.X += otherVec.X
	vec.Y += otherVec.Y
	return vec
}

func (vec Vec2) AddScaled(otherVec Vec2, factor float64) Vec2 {
	vec.X += otherVec.X * factor
	vec.Y += otherVec.Y * factor
	return vec
}

func (vec Vec2) Sub(otherVec Vec2) Vec2 {
	vec.X -= otherVec.X
	vec.Y -= otherVec.Y
	return vec
}

func (vec Vec2) Dot(otherVec Vec2) float64 {
	return vec.X*otherVec.X + vec.Y*otherVec.Y
}

func (vec Vec2) Angle() Angle {
	return Angle(math.Atan2(vec.Y, vec.X))
}

func (vec Vec2) Distance(otherVec Vec2) float64 {
	return vec.Sub(otherVec).Length()
}

func (vec Vec2) DistanceSquared(otherVec Vec2) float64 {
	x := vec.X - otherVec.X
	y := vec.Y - otherVec.Y
	return x*x + y*y
}

func (vec Vec2) Length() float64 {
	return math.Hypot(vec.X, vec.Y)
}

func (vec Vec2) LengthSquared() float64 {
	return vec.X*vec.X + vec.Y*vec.Y
}

func (vec Vec2) Norm() Vec2 {
	return vec.Div(vec.Length())
}

func (vec Vec2) Finite() bool {
	return !(math.IsNaN(vec.X) || math.IsNaN(vec.Y) || math.IsInf(vec.X, 0) || math.IsInf(vec.Y, 0))
}

func Lerp(a, b, factor float64) float64 {
	return a + (b-a)*factor
}

func (vec Vec2) Lerp(otherVec Vec2, factor float64) Vec2 {
	vec.X = Lerp(vec.X, otherVec.X, factor)
	vec.Y = Lerp(vec.Y, otherVec.Y, factor)
	return vec
}

func (vec Vec2) Mid(otherVec Vec2) Vec2 {
	return vec.Add(otherVec).Mul(0.5)
}
