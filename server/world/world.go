// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
)

// World owns all Players. All mutation happens on the room goroutine; the
// only cross-goroutine surface is the per-player input slot.
type World struct {
	Arena   Arena
	players map[string]*Player

	// order preserves insertion order so collision arbitration and
	// projection are reproducible (Go map iteration is not).
	order []string
}

func New(arena Arena) *World {
	return &World{
		Arena:   arena,
		players: make(map[string]*Player),
	}
}

func (w *World) Len() int {
	return len(w.players)
}

func (w *World) Player(id string) *Player {
	return w.players[id]
}

// ForPlayers iterates players in insertion order until the callback returns
// true.
func (w *World) ForPlayers(callback func(p *Player) (stop bool)) {
	for _, id := range w.order {
		if callback(w.players[id]) {
			return
		}
	}
}

// CreatePlayer adds a player with a regular polygon seed territory centered
// at pos. Speed stays zero until the first input so the player does not
// drift before steering.
func (w *World) CreatePlayer(id, name, color string, pos Vec2) *Player {
	p := &Player{
		ID:        id,
		Name:      name,
		Color:     color,
		Pos:       pos,
		Prev:      pos,
		Territory: seedTerritory(pos),
	}
	p.Score = int(math.Floor(Area(p.Territory)))

	w.players[id] = p
	w.order = append(w.order, id)
	return p
}

func (w *World) RemovePlayer(id string) {
	if _, ok := w.players[id]; !ok {
		return
	}
	delete(w.players, id)
	for i, other := range w.order {
		if other == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// SetInput deposits the latest target angle for a player. Safe to call from
// any goroutine; unknown and dead players are dropped silently.
func (w *World) SetInput(id string, targetAngle float64) {
	p := w.players[id]
	if p == nil || p.Dead {
		return
	}
	p.input.Store(targetAngle)
}

// ApplyInputs consumes pending input slots. Run at the top of each tick so
// integration observes only inputs that arrived strictly before it.
func (w *World) ApplyInputs() {
	w.ForPlayers(func(p *Player) (_ bool) {
		angle, ok := p.input.Take()
		if !ok || p.Dead {
			return
		}
		p.DirectionTarget = Angle(angle)
		if p.Speed == 0 {
			p.Speed = PlayerSpeed
		}
		return
	})
}

// Integrate advances movement, trail growth and timers by dt seconds.
func (w *World) Integrate(dt float64) {
	w.ForPlayers(func(p *Player) (_ bool) {
		p.justCaptured = false

		if p.Dead {
			p.DeathTimer += dt
			return
		}

		p.Direction = p.Direction.Norm()
		diff := p.DirectionTarget.Diff(p.Direction)
		p.Direction = (p.Direction + diff*Angle(PlayerTurnSpeed*dt)).Norm()

		p.Prev = p.Pos
		p.Pos = p.Pos.AddScaled(p.Direction.Vec2(), p.Speed*dt)

		w.clampToArena(p)

		if p.Outside {
			last := p.Trail[len(p.Trail)-1]
			if p.Pos.Distance(last) >= TrailPointDistance {
				p.Trail = append(p.Trail, p.Pos)
			}
		}

		if p.InvulnerableTimer > 0 {
			p.InvulnerableTimer = math.Max(0, p.InvulnerableTimer-dt)
		}
		return
	})
}

func (w *World) clampToArena(p *Player) {
	limit := w.Arena.Radius - 1.0
	offset := p.Pos.Sub(w.Arena.Center)
	if d := offset.Length(); d > limit {
		p.Pos = w.Arena.Center.Add(offset.Mul(limit / d))
	}
}

func seedTerritory(center Vec2) []Vec2 {
	radius := StartingTerritorySize/2 + 5
	territory := make([]Vec2, seedTerritoryVertices)
	for i := range territory {
		a := float64(i) / seedTerritoryVertices * 2 * math.Pi
		territory[i] = center.Add(Vec2{X: math.Cos(a), Y: math.Sin(a)}.Mul(radius))
	}
	return EnsureClockwise(territory)
}
