// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

const (
	// selfTrailGap ignores roughly the last 20 trail segments attached to
	// the body, tolerating sharp turns and boundary sliding.
	selfTrailGap = 20

	// exitSafeDistance permits legitimate loop closures that come back near
	// the trail's starting point.
	exitSafeDistance = 100.0
)

// Kill records a fatal trail crossing. Victim is the owner of the crossed
// trail; By is the player whose movement segment crossed it (equal for
// self-collisions).
type Kill struct {
	Victim string
	By     string
}

// CollisionEngine detects trail crossings with a spatial hash rebuilt every
// tick. Runs after the capture engine; kills target the owner of the crossed
// trail, so two players crossing each other's trails in one tick both die.
type CollisionEngine struct {
	hash *SpatialHash
	buf  []Segment

	// Kills committed this tick, in detection order.
	Kills []Kill
}

func NewCollisionEngine() *CollisionEngine {
	return &CollisionEngine{hash: NewSpatialHash()}
}

func (e *CollisionEngine) Update(w *World) {
	e.Kills = e.Kills[:0]
	e.hash.Clear()

	// Index every live player's pre-tick trail and territory edges with
	// fresh value records.
	w.ForPlayers(func(p *Player) (_ bool) {
		if p.Dead {
			return
		}
		for i := 0; i+1 < len(p.Trail); i++ {
			e.hash.Insert(Segment{
				PlayerID: p.ID,
				Kind:     SegmentTrail,
				Index:    i,
				P1:       p.Trail[i],
				P2:       p.Trail[i+1],
			})
		}
		n := len(p.Territory)
		for i := 0; i < n; i++ {
			e.hash.Insert(Segment{
				PlayerID: p.ID,
				Kind:     SegmentTerritory,
				P1:       p.Territory[i],
				P2:       p.Territory[(i+1)%n],
			})
		}
		return
	})

	// Detect against pre-tick state without applying, so two players that
	// cross each other's trails in the same tick both die.
	w.ForPlayers(func(p *Player) (_ bool) {
		if p.Dead || p.Won || p.justCaptured || p.InvulnerableTimer > 0 {
			return
		}

		e.buf = e.hash.Query(p.Pos, e.buf[:0])
		for _, item := range e.buf {
			// Territories are not solid; their edges are indexed for
			// identity only.
			if item.Kind != SegmentTrail {
				continue
			}

			if item.PlayerID != p.ID {
				if _, ok := SegmentIntersection(p.Prev, p.Pos, item.P1, item.P2); ok {
					// The victim is the player whose line was cut. Keep
					// checking to allow multi-kills.
					e.record(item.PlayerID, p.ID)
				}
				continue
			}

			// Self-crossing rules.
			if !p.Outside || p.Pos.Distance(p.ExitPoint) < exitSafeDistance {
				continue
			}
			if len(p.Trail)-1-item.Index <= selfTrailGap {
				continue
			}
			if _, ok := SegmentIntersection(p.Prev, p.Pos, item.P1, item.P2); ok {
				e.record(p.ID, p.ID)
			}
		}
		return
	})

	// Apply. Kill is a no-op for victorious players, and record already
	// deduplicated victims.
	for i := 0; i < len(e.Kills); {
		victim := w.Player(e.Kills[i].Victim)
		if victim == nil || victim.Dead || victim.Won {
			e.Kills = append(e.Kills[:i], e.Kills[i+1:]...)
			continue
		}
		victim.Kill()
		i++
	}
}

// record notes a pending kill; the first crossing detected for a victim wins.
func (e *CollisionEngine) record(victimID, byID string) {
	for _, k := range e.Kills {
		if k.Victim == victimID {
			return
		}
	}
	e.Kills = append(e.Kills, Kill{Victim: victimID, By: byID})
}
