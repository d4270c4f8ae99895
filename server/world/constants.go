// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
	"time"
)

const (
	// WorldWidth and WorldHeight bound the square the arena is inscribed in.
	WorldWidth  = 5000.0
	WorldHeight = 5000.0

	// PlayerSpeed is the scalar velocity in units per second once a player
	// has supplied their first input.
	PlayerSpeed = 500.0

	// PlayerTurnSpeed is the frame-rate-independent steering factor.
	PlayerTurnSpeed = 12.0

	// TrailPointDistance is the minimum spacing between recorded trail points.
	TrailPointDistance = 10.0

	// StartingTerritorySize is the diameter the seed territory is derived from.
	StartingTerritorySize = 300.0

	// MinSpawnDistance separates fresh spawns from existing territories.
	MinSpawnDistance = 500.0

	TicksPerSecond = 60
	TickPeriod     = time.Second / TicksPerSecond

	// BotIDPrefix marks synthetic players.
	BotIDPrefix = "BOT_"

	seedTerritoryVertices = 32
)

// Colors is the palette display tokens are assigned from. Opaque to the core.
var Colors = [...]string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEAA7",
	"#DDA0DD",
	"#FF9F43",
	"#74B9FF",
	"#A29BFE",
	"#55E6C1",
}

// Arena is the circular playable region.
type Arena struct {
	Center Vec2
	Radius float64
}

func DefaultArena() Arena {
	return Arena{
		Center: Vec2{X: WorldWidth / 2, Y: WorldHeight / 2},
		Radius: WorldWidth / 2,
	}
}

func (a Arena) Area() float64 {
	return math.Pi * a.Radius * a.Radius
}

// WinScore is the territory score that latches victory: 99% of the arena.
func (a Arena) WinScore() int {
	return int(math.Floor(a.Area() * 0.99))
}

func (a Arena) Contains(pos Vec2) bool {
	return pos.DistanceSquared(a.Center) <= a.Radius*a.Radius
}
