// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTerritory swaps a player's seed territory for a handmade polygon and
// rebases the score, like a committed capture would.
func setTerritory(p *Player, territory []Vec2) {
	p.Territory = territory
	p.Score = int(math.Floor(Area(territory)))
}

// walkTrail appends points spaced roughly `step` apart along the waypoints,
// imitating trail growth during integration.
func walkTrail(trail []Vec2, step float64, waypoints ...Vec2) []Vec2 {
	pos := trail[len(trail)-1]
	for _, wp := range waypoints {
		for pos.Distance(wp) > step {
			pos = pos.AddScaled(wp.Sub(pos).Norm(), step)
			trail = append(trail, pos)
		}
		pos = wp
		trail = append(trail, pos)
	}
	return trail
}

func TestCaptureEngine_ExitOpensTrail(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})

	p.Prev = Vec2{2500, 2520}
	p.Pos = Vec2{2700, 2520}

	e.Update(w)

	require.True(t, p.Outside)
	require.Len(t, p.Trail, 1)
	assert.Equal(t, p.ExitPoint, p.Trail[0])
	assert.Equal(t, 0, p.ExitEdge)
	assert.InDelta(t, 2520, p.ExitPoint.Y, 1e-6)
	assert.InDelta(t, 2653, p.ExitPoint.X, 1)
	assert.Empty(t, e.Captures)
}

func TestCaptureEngine_InvulnerableSuppressesExit(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})

	p.InvulnerableTimer = 0.3
	p.Prev = Vec2{2500, 2500}
	p.Pos = Vec2{2700, 2500}

	e.Update(w)

	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
}

func TestCaptureEngine_EntryDebounce(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})
	before := append([]Vec2{}, p.Territory...)
	score := p.Score

	// A two-point trail that dips back inside must not capture.
	p.beginTrail(BoundaryHit{Point: Vec2{2655, 2500}, Edge: 0})
	p.Trail = append(p.Trail, Vec2{2665, 2500})
	p.Prev = Vec2{2665, 2500}
	p.Pos = Vec2{2600, 2500}

	e.Update(w)

	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
	assert.Empty(t, e.Captures)
	assert.Equal(t, before, p.Territory)
	assert.Equal(t, score, p.Score)
}

func TestCaptureEngine_RepairsOutsideWithEmptyTrail(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})

	p.Outside = true
	p.Trail = p.Trail[:0]

	e.Update(w)

	assert.Equal(t, 1, e.Repaired)
	assert.False(t, p.Outside)
}

func TestCaptureEngine_EntryCapture(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{1050, 1050})
	setTerritory(p, []Vec2{{1000, 1000}, {1100, 1000}, {1100, 1100}, {1000, 1100}})
	require.Equal(t, 10000, p.Score)

	// Exit through the right edge, detour a 50x60 rectangle, re-enter
	// through the same edge further down.
	p.beginTrail(BoundaryHit{Point: Vec2{1100, 1020}, Edge: 1})
	p.Trail = append(p.Trail, Vec2{1150, 1020}, Vec2{1150, 1080})
	p.Prev = Vec2{1150, 1080}
	p.Pos = Vec2{1090, 1080}

	e.Update(w)

	require.Len(t, e.Captures, 1)
	assert.Equal(t, "p1", e.Captures[0].PlayerID)
	assert.InDelta(t, 13000, float64(p.Score), 1)
	assert.Equal(t, p.Score, e.Captures[0].Score)

	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
	assert.True(t, p.TerritoryChanged)
	assert.InDelta(t, InvulnerabilityDuration, p.InvulnerableTimer, 1e-9)
	assert.Positive(t, SignedArea(p.Territory))
	assert.True(t, PointInPolygon(Vec2{1050, 1050}, p.Territory), "old territory retained")
	assert.True(t, PointInPolygon(Vec2{1125, 1050}, p.Territory), "detour annexed")
}

func TestCaptureEngine_LoopClosure(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{1050, 1050})
	setTerritory(p, []Vec2{{1000, 1000}, {1100, 1000}, {1100, 1100}, {1000, 1100}})

	// A long open-space loop that returns near the exit point without ever
	// re-entering the territory.
	p.beginTrail(BoundaryHit{Point: Vec2{1100, 1050}, Edge: 1})
	p.Trail = walkTrail(p.Trail, 25,
		Vec2{1350, 1050}, Vec2{1350, 1300}, Vec2{1120, 1300}, Vec2{1120, 1080})
	require.Greater(t, len(p.Trail), minTrailForLoop)

	p.Prev = Vec2{1120, 1105}
	p.Pos = Vec2{1120, 1080}
	require.Less(t, p.Pos.Distance(p.ExitPoint), loopCloseDistance)
	require.False(t, PointInPolygon(p.Pos, p.Territory))

	e.Update(w)

	require.Len(t, e.Captures, 1)
	assert.Greater(t, p.Score, 10000)
	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
	assert.Equal(t, p.Score, int(math.Floor(Area(p.Territory))))
}

func TestCaptureEngine_LoopClosureRequiresGrowth(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{1050, 1050})
	setTerritory(p, []Vec2{{1000, 1000}, {1100, 1000}, {1100, 1100}, {1000, 1100}})
	before := append([]Vec2{}, p.Territory...)

	// A tight counterclockwise loop hugging the exit: it closes, but its
	// winding cancels against the territory, so the best candidate cannot
	// beat the current area. The trail is discarded and the territory kept.
	p.beginTrail(BoundaryHit{Point: Vec2{1100, 1050}, Edge: 1})
	p.Trail = walkTrail(p.Trail, 2,
		Vec2{1115, 1060}, Vec2{1115, 1045}, Vec2{1104, 1045})
	require.Greater(t, len(p.Trail), minTrailForLoop)

	p.Prev = Vec2{1105, 1044}
	p.Pos = Vec2{1104, 1045}
	require.False(t, PointInPolygon(p.Pos, p.Territory))

	e.Update(w)

	assert.Empty(t, e.Captures)
	assert.Equal(t, 1, e.Rejected)
	assert.Equal(t, before, p.Territory)
	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
}

func TestCaptureEngine_VictoryLatch(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", w.Arena.Center)

	huge := EnsureClockwise(regularPolygon(w.Arena.Center, w.Arena.Radius-5, 64))
	setTerritory(p, huge)
	require.GreaterOrEqual(t, p.Score, w.Arena.WinScore())

	p.Prev = p.Pos
	e.Update(w)

	require.True(t, p.Won)
	assert.Equal(t, []string{"p1"}, e.Wins)
	assert.False(t, p.Outside)

	// Latched: a second tick does not announce again, and kills are inert.
	e.Update(w)
	assert.Empty(t, e.Wins)
	p.Kill()
	assert.False(t, p.Dead)
}

func TestCaptureEngine_ResimplifiesDenseCaptures(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{1050, 1050})
	setTerritory(p, []Vec2{{1000, 1000}, {1100, 1000}, {1100, 1100}, {1000, 1100}})

	// A trail dense enough to survive the first simplification pass with
	// more vertices than a territory may keep.
	p.beginTrail(BoundaryHit{Point: Vec2{1100, 1020}, Edge: 1})
	p.Trail = walkTrail(p.Trail, 1.5,
		Vec2{1500, 1020}, Vec2{1500, 1080}, Vec2{1150, 1080})
	require.Greater(t, len(p.Trail), maxTerritoryVertices)

	p.Prev = Vec2{1150, 1080}
	p.Pos = Vec2{1090, 1080}

	e.Update(w)

	require.Len(t, e.Captures, 1)
	assert.LessOrEqual(t, len(p.Territory), maxTerritoryVertices)
	assert.True(t, PointInPolygon(Vec2{1050, 1050}, p.Territory), "old territory retained")
	assert.True(t, PointInPolygon(Vec2{1300, 1050}, p.Territory), "detour annexed")
}

func TestCaptureEngine_EntryTunnelFallback(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{1050, 1050})
	setTerritory(p, []Vec2{{1000, 1000}, {1100, 1000}, {1100, 1100}, {1000, 1100}})

	// The movement segment crosses no boundary edge (both endpoints already
	// inside), so the entry hit is synthesized at the nearest vertex.
	p.beginTrail(BoundaryHit{Point: Vec2{1100, 1020}, Edge: 1})
	p.Trail = append(p.Trail, Vec2{1150, 1020}, Vec2{1150, 1080}, Vec2{1110, 1080})
	p.Prev = Vec2{1095, 1085}
	p.Pos = Vec2{1090, 1080}

	e.Update(w)

	require.Len(t, e.Captures, 1)
	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
	assert.True(t, PointInPolygon(Vec2{1050, 1050}, p.Territory), "old territory retained")
	assert.True(t, PointInPolygon(Vec2{1125, 1050}, p.Territory), "detour annexed")
}

func TestCaptureEngine_ExitTunnelFallback(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})

	// Both endpoints of the movement segment lie outside; the exit is
	// forced at the previous position on edge 0.
	p.Prev = Vec2{2700, 2500}
	p.Pos = Vec2{2710, 2500}

	e.Update(w)

	require.True(t, p.Outside)
	assert.Equal(t, 0, p.ExitEdge)
	assert.Equal(t, Vec2{2700, 2500}, p.ExitPoint)
	require.Len(t, p.Trail, 1)
	assert.Equal(t, p.ExitPoint, p.Trail[0])
}

func TestCaptureEngine_WonPlayerStaysInside(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})
	p.Won = true

	p.Prev = Vec2{2500, 2500}
	p.Pos = Vec2{2700, 2500} // would be an exit for anyone else

	e.Update(w)

	assert.False(t, p.Outside)
	assert.Empty(t, p.Trail)
}

func TestCaptureEngine_DeadPlayersIgnored(t *testing.T) {
	w := newTestWorld()
	e := NewCaptureEngine()
	p := w.CreatePlayer("p1", "", "", Vec2{2500, 2500})
	p.Kill()
	p.Pos = Vec2{2700, 2500} // would be an exit if alive

	e.Update(w)

	assert.False(t, p.Outside)
	assert.Empty(t, e.Captures)
}
