// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
	"strings"
	"sync/atomic"
)

const (
	// InvulnerabilityDuration is the grace period after a successful capture
	// during which exit detection is suppressed.
	InvulnerabilityDuration = 0.5

	// BotRemoveDelay is how long a dead bot lingers before removal.
	BotRemoveDelay = 1.0
)

// Player is the only mutable entity of the simulation. The World uniquely
// owns all Players; engines borrow them for the duration of a tick.
type Player struct {
	ID    string
	Name  string
	Color string

	Pos             Vec2
	Prev            Vec2
	Direction       Angle
	DirectionTarget Angle
	Speed           float64

	// Territory is a closed polygon, clockwise winding, >= 3 vertices.
	Territory []Vec2

	// Trail is nonempty iff Outside; Trail[0] is always ExitPoint.
	Trail     []Vec2
	Outside   bool
	ExitPoint Vec2
	ExitEdge  int

	Dead              bool
	DeathTimer        float64
	InvulnerableTimer float64
	Won               bool
	Score             int

	// TerritoryChanged is a one-shot hint for the projection layer.
	TerritoryChanged bool

	// Projection cache: flat lengths last sent, used for resync decisions.
	NetTerritoryLen int
	NetTrailLen     int

	// justCaptured suppresses collision checks for the tick of a capture,
	// while the spatial hash still holds the just-cleared trail.
	justCaptured bool

	input inputSlot
}

// inputSlot is a latest-wins input cell. The transport or bot goroutine
// stores; the room goroutine takes once per tick. Older inputs are discarded
// silently.
type inputSlot struct {
	bits atomic.Uint64
	set  atomic.Bool
}

func (s *inputSlot) Store(angle float64) {
	s.bits.Store(math.Float64bits(angle))
	s.set.Store(true)
}

func (s *inputSlot) Take() (float64, bool) {
	if !s.set.Load() {
		return 0, false
	}
	s.set.Store(false)
	return math.Float64frombits(s.bits.Load()), true
}

func (p *Player) Bot() bool {
	return strings.HasPrefix(p.ID, BotIDPrefix)
}

// ClearTrailState returns the player to the inside state.
func (p *Player) ClearTrailState() {
	p.Trail = p.Trail[:0]
	p.Outside = false
	p.ExitPoint = Vec2{}
	p.ExitEdge = 0
}

// Kill marks the player dead and starts the death timer. Victorious players
// are invincible.
func (p *Player) Kill() {
	if p.Dead || p.Won {
		return
	}
	p.Dead = true
	p.DeathTimer = 0
	p.Speed = 0
	p.ClearTrailState()
}

// beginTrail opens a trail at a boundary hit.
func (p *Player) beginTrail(hit BoundaryHit) {
	p.Outside = true
	p.ExitPoint = hit.Point
	p.ExitEdge = hit.Edge
	p.Trail = append(p.Trail[:0], hit.Point)
}

// commitTerritory installs a validated capture polygon.
func (p *Player) commitTerritory(territory []Vec2) {
	p.Territory = territory
	p.Score = int(math.Floor(Area(territory)))
	p.TerritoryChanged = true
	p.InvulnerableTimer = InvulnerabilityDuration
	p.justCaptured = true
}
