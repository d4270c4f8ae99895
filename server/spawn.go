// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"math"
	"math/rand"

	"github.com/encircleio/encircle/server/world"
)

const (
	spawnAttempts = 64

	// spawnTerritoryBuffer keeps a fresh seed polygon clear of existing
	// territory walls, which can lie far from their owner's position.
	spawnTerritoryBuffer = world.StartingTerritorySize/2 + 100
)

// findSpawnPosition picks a spot for a new seed territory: uniform over the
// arena disc (sqrt keeps the density even), not inside anyone's territory,
// clear of every territory wall, and away from every live player. The
// player-distance requirement relaxes with each failed attempt; if that still
// fails, a second round accepts any point that is simply not walled in.
func (h *Hub) findSpawnPosition(r *rand.Rand) world.Vec2 {
	arena := h.world.Arena

	// Keep the whole seed territory inside the boundary.
	maxRadius := arena.Radius - (world.StartingTerritorySize/2 + 50)
	required := world.MinSpawnDistance

	for attempt := 0; attempt < spawnAttempts; attempt++ {
		pos := arena.Center.Add(randomDiscOffset(r, maxRadius))

		if h.spawnClear(pos, required) {
			return pos
		}

		required = max(required*0.9, world.StartingTerritorySize/2)
	}

	// Relaxed round: anywhere not inside a live territory.
	for attempt := 0; attempt < spawnAttempts; attempt++ {
		pos := arena.Center.Add(randomDiscOffset(r, maxRadius))

		if !h.insideLiveTerritory(pos) {
			return pos
		}
	}

	// Crowded beyond reason; the center at least is always in bounds.
	log.Println("no clear spawn found, using arena center")
	return arena.Center
}

func randomDiscOffset(r *rand.Rand, radius float64) world.Vec2 {
	return world.ToAngle(r.Float64() * 2 * math.Pi).Vec2().Mul(math.Sqrt(r.Float64()) * radius)
}

func (h *Hub) spawnClear(pos world.Vec2, required float64) bool {
	clear := true
	h.world.ForPlayers(func(p *world.Player) (stop bool) {
		if p.Dead {
			return
		}
		if pos.Distance(p.Pos) < required || world.PointInPolygon(pos, p.Territory) {
			clear = false
			stop = true
			return
		}
		for _, v := range p.Territory {
			if pos.Distance(v) < spawnTerritoryBuffer {
				clear = false
				stop = true
				return
			}
		}
		return
	})
	return clear
}

func (h *Hub) insideLiveTerritory(pos world.Vec2) bool {
	inside := false
	h.world.ForPlayers(func(p *world.Player) (stop bool) {
		if !p.Dead && world.PointInPolygon(pos, p.Territory) {
			inside = true
			stop = true
		}
		return
	})
	return inside
}
