// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"fmt"
	"math"
)

// Angle is a heading in radians, normalized to (-pi, pi].
type Angle float64

func ToAngle(f float64) Angle {
	return Angle(f).Norm()
}

func (angle Angle) Float() float64 {
	return float64(angle)
}

// Norm re-normalizes to (-pi, pi] the same way the simulation does
// after every integration step.
func (angle Angle) Norm() Angle {
	return Angle(math.Atan2(math.Sin(float64(angle)), math.Cos(float64(angle))))
}

func (angle Angle) Vec2() Vec2 {
	sin, cos := math.Sincos(float64(angle))
	return Vec2{
		X: cos,
		Y: sin,
	}
}

// Diff returns the shortest-path difference angle - otherAngle.
func (angle Angle) Diff(otherAngle Angle) (difference Angle) {
	difference = angle - otherAngle
	const mod = Angle(math.Pi * 2)

	if difference >= mod || difference < -mod {
		difference = Angle(math.Mod(float64(difference), float64(mod)))
	}

	if difference < Angle(-math.Pi) {
		difference += Angle(math.Pi * 2)
	} else if difference >= Angle(math.Pi) {
		difference -= Angle(math.Pi * 2)
	}
	return
}

// Lerp steers toward otherAngle along the shortest path.
func (angle Angle) Lerp(otherAngle Angle, factor float64) Angle {
	delta := otherAngle.Diff(angle)
	return angle + delta*Angle(factor)
}

func (angle Angle) ClampMagnitude(max Angle) Angle {
	if angle < -max {
		return -max
	}
	if angle > max {
		return max
	}
	return angle
}

func (angle Angle) Abs() Angle {
	return Angle(math.Abs(float64(angle)))
}

func (angle Angle) Inv() Angle {
	return angle + Angle(math.Pi)
}

func (angle Angle) String() string {
	return fmt.Sprintf("%.01f degrees", float64(angle)*180/math.Pi)
}
