// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync"
	"sync/atomic"

	"github.com/encircleio/encircle/server/world"
)

type (
	// Welcome tells a freshly registered client who they are and where they
	// play. Sent once, before the first Update.
	Welcome struct {
		PlayerID    string  `json:"playerID"`
		ArenaX      float64 `json:"arenaX"`
		ArenaY      float64 `json:"arenaY"`
		ArenaRadius float64 `json:"arenaRadius"`
	}

	// PlayerState is the per-player view of one tick. Scalars are always
	// present; Territory and Trail are flat [x0,y0,x1,y1,...] arrays and are
	// only present when the client must resync them. A present-but-empty
	// array means resync to empty; absent means no change.
	PlayerState struct {
		Name      string     `json:"name"`
		Color     string     `json:"color"`
		X         float64    `json:"x"`
		Y         float64    `json:"y"`
		Angle     float64    `json:"angle"`
		Score     int        `json:"score"`
		Dead      bool       `json:"dead,omitempty"`
		Won       bool       `json:"won,omitempty"`
		Territory *[]float64 `json:"territory,omitempty"`
		Trail     *[]float64 `json:"trail,omitempty"`
	}

	// IDPlayerState is a PlayerState paired with its id for the map encoder.
	IDPlayerState struct {
		PlayerState
		ID string
	}

	// Update is the per-tick broadcast. Players marshals as an object keyed
	// by player id (see jsoniter.go). One Update is shared by all clients of
	// a tick; refs counts the outstanding recipients for pooling.
	Update struct {
		Players []IDPlayerState `json:"players"`
		Removed []string        `json:"removed,omitempty"`

		refs int32
	}
)

func init() {
	registerOutbound(
		Welcome{},
		&Update{},
	)
}

const poolPlayersCap = 16

var updatePool = sync.Pool{
	New: func() interface{} {
		return &Update{
			Players: make([]IDPlayerState, 0, poolPlayersCap),
		}
	},
}

func NewUpdate() *Update {
	return updatePool.Get().(*Update)
}

// Retain adds n recipients. Must be called before the Update is sent.
func (update *Update) Retain(n int) {
	atomic.AddInt32(&update.refs, int32(n))
}

// Pool releases one recipient's reference and recycles the Update once the
// last one is done with it.
func (update *Update) Pool() {
	if atomic.AddInt32(&update.refs, -1) > 0 {
		return
	}

	*update = Update{
		Players: clearIDPlayerStates(update.Players),
	}
	updatePool.Put(update)
}

func (welcome Welcome) Pool() {}

func clearIDPlayerStates(states []IDPlayerState) []IDPlayerState {
	for i := range states {
		states[i] = IDPlayerState{}
	}
	return states[:0]
}

// flatten appends polygon vertices as x,y pairs. Always returns a non-nil
// slice so an empty polygon still marshals as [].
func flatten(points []world.Vec2) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}

// buildUpdate projects the world into an Update. The shared per-tick update
// (full=false) includes territories and trails only when they changed, and
// advances each player's resync counters; a full update (for clients that
// just registered) includes everything and leaves the counters alone.
func buildUpdate(w *world.World, removed []string, full bool) *Update {
	update := NewUpdate()
	update.Removed = append(update.Removed, removed...)

	w.ForPlayers(func(p *world.Player) (_ bool) {
		state := IDPlayerState{ID: p.ID}
		s := &state.PlayerState
		s.Name = p.Name
		s.Color = p.Color
		s.X = p.Pos.X
		s.Y = p.Pos.Y
		s.Angle = p.Direction.Float()
		s.Score = p.Score
		s.Dead = p.Dead
		s.Won = p.Won

		if full || p.TerritoryChanged || p.NetTerritoryLen != len(p.Territory)*2 {
			territory := flatten(p.Territory)
			s.Territory = &territory
			if !full {
				p.TerritoryChanged = false
				p.NetTerritoryLen = len(territory)
			}
		}

		if full || p.NetTrailLen != len(p.Trail)*2 {
			trail := flatten(p.Trail)
			s.Trail = &trail
			if !full {
				p.NetTrailLen = len(trail)
			}
		}

		update.Players = append(update.Players, state)
		return
	})

	return update
}
