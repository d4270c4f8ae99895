// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
)

const (
	// minTrailForCapture debounces re-entry jitter: a trail of 1 or 2 points
	// never captures.
	minTrailForCapture = 2

	// Loop closure in open space: trail head returning within this distance
	// of the exit point closes the loop without re-entering the territory.
	loopCloseDistance  = 80.0
	minTrailForLoop    = 10

	// Adaptive simplification keeps per-tick geometry cost bounded.
	simplifyTolerance     = 1.0
	simplifyToleranceHard = 2.0
	maxTerritoryVertices  = 400

	// Capture acceptance: anything smaller is a degenerate ring.
	minTerritoryArea     = 100.0
	minTerritoryVertices = 4
)

// CaptureEvent records a committed capture for the event log.
type CaptureEvent struct {
	PlayerID string
	Score    int
}

// CaptureEngine detects territory exits, entries and loop closures, and
// applies the capture acceptance policy. Runs once per tick, after
// integration and before collision checks.
type CaptureEngine struct {
	// Per-tick outputs, reset at the start of Update.
	Captures []CaptureEvent
	Rejected int
	Repaired int
	Wins     []string
}

func NewCaptureEngine() *CaptureEngine {
	return &CaptureEngine{}
}

func (e *CaptureEngine) Update(w *World) {
	e.Captures = e.Captures[:0]
	e.Wins = e.Wins[:0]
	e.Rejected = 0
	e.Repaired = 0

	w.ForPlayers(func(p *Player) (_ bool) {
		if p.Dead {
			return
		}

		e.repair(p)

		// Victory freezes the state machine; a winner never re-opens a trail.
		if !p.Won {
			inside := PointInPolygon(p.Pos, p.Territory)

			switch {
			case !p.Outside && !inside && p.InvulnerableTimer <= 0:
				e.exit(p)
			case p.Outside && inside:
				e.enter(p)
			case p.Outside && !inside && len(p.Trail) > minTrailForLoop &&
				p.Pos.Distance(p.ExitPoint) < loopCloseDistance:
				e.closeLoop(p)
			}
		}

		if !p.Won && p.Score >= w.Arena.WinScore() {
			p.Won = true
			p.ClearTrailState()
			e.Wins = append(e.Wins, p.ID)
		}
		return
	})
}

// repair restores the trail-state invariant if it was violated (outside with
// an empty trail). Not fatal; the player simply loses the trail.
func (e *CaptureEngine) repair(p *Player) {
	if p.Outside && len(p.Trail) == 0 {
		p.ClearTrailState()
		e.Repaired++
	}
}

// exit opens a trail where the player crossed their own boundary. If the
// crossing cannot be located (a numerical jump), force-exit at the previous
// position on edge 0.
func (e *CaptureEngine) exit(p *Player) {
	hit, ok := FindBoundaryIntersection(p.Prev, p.Pos, p.Territory)
	if !ok {
		hit = BoundaryHit{Point: p.Prev, Edge: 0}
	}
	p.beginTrail(hit)
}

// enter closes the trail at the boundary crossing and attempts a capture.
// When the segment tunneled past every edge, synthesize a hit at the current
// position on the nearest boundary vertex's edge.
func (e *CaptureEngine) enter(p *Player) {
	hit, ok := FindBoundaryIntersection(p.Prev, p.Pos, p.Territory)
	if !ok {
		hit = BoundaryHit{Point: p.Pos, Edge: NearestVertex(p.Pos, p.Territory)}
	}

	if len(p.Trail) > minTrailForCapture {
		e.attempt(p, hit, false)
	}
	p.ClearTrailState()
}

// closeLoop treats the trail head returning near the exit point as an entry
// at the exit edge. Requires strict growth to commit.
func (e *CaptureEngine) closeLoop(p *Player) {
	e.attempt(p, BoundaryHit{Point: p.ExitPoint, Edge: p.ExitEdge}, true)
	p.ClearTrailState()
}

// attempt runs the capture acceptance pipeline. On any geometry fault the
// capture is rejected and the prior territory preserved.
func (e *CaptureEngine) attempt(p *Player, entry BoundaryHit, strictGrowth bool) {
	exit := BoundaryHit{Point: p.ExitPoint, Edge: p.ExitEdge}
	capture := ComputeCapture(p.Territory, p.Trail, exit, entry)

	territory := SimplifyPolygon(capture, simplifyTolerance)
	if len(territory) > maxTerritoryVertices {
		territory = SimplifyPolygon(capture, simplifyToleranceHard)
	}
	territory = EnsureClockwise(territory)

	if !validTerritory(territory) {
		e.Rejected++
		return
	}

	area := Area(territory)
	if strictGrowth && area <= Area(p.Territory) {
		e.Rejected++
		return
	}

	p.commitTerritory(territory)
	e.Captures = append(e.Captures, CaptureEvent{PlayerID: p.ID, Score: p.Score})
}

func validTerritory(poly []Vec2) bool {
	if len(poly) < minTerritoryVertices || !PolygonFinite(poly) {
		return false
	}
	area := Area(poly)
	return area > minTerritoryArea && !math.IsInf(area, 0) && !math.IsNaN(area)
}
