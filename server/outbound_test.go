// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"testing"

	"github.com/encircleio/encircle/server/world"
)

func findState(update *Update, id string) *IDPlayerState {
	for i := range update.Players {
		if update.Players[i].ID == id {
			return &update.Players[i]
		}
	}
	return nil
}

func TestBuildUpdateResyncsTerritoryOnce(t *testing.T) {
	w := world.New(world.DefaultArena())
	p := w.CreatePlayer("p1", "n", "#FF6B6B", world.Vec2{X: 2500, Y: 2500})

	first := buildUpdate(w, nil, false)
	state := findState(first, "p1")
	if state == nil {
		t.Fatal("player missing from update")
	}
	if state.Territory == nil {
		t.Fatal("first update must carry the territory")
	}
	if len(*state.Territory) != len(p.Territory)*2 {
		t.Errorf("territory floats = %d", len(*state.Territory))
	}
	if state.Trail != nil {
		t.Error("empty unchanged trail must not be sent")
	}

	second := buildUpdate(w, nil, false)
	state = findState(second, "p1")
	if state.Territory != nil {
		t.Error("unchanged territory must not be resent")
	}

	// The change hint forces a resync even at equal length.
	p.TerritoryChanged = true
	third := buildUpdate(w, nil, false)
	if findState(third, "p1").Territory == nil {
		t.Error("TerritoryChanged must force a resync")
	}
	if p.TerritoryChanged {
		t.Error("hint must be cleared by the shared update")
	}
}

func TestBuildUpdateTrailFollowsLength(t *testing.T) {
	w := world.New(world.DefaultArena())
	p := w.CreatePlayer("p1", "n", "#FF6B6B", world.Vec2{X: 2500, Y: 2500})

	buildUpdate(w, nil, false)

	p.Trail = append(p.Trail, world.Vec2{X: 1, Y: 2}, world.Vec2{X: 3, Y: 4})
	update := buildUpdate(w, nil, false)
	state := findState(update, "p1")
	if state.Trail == nil || len(*state.Trail) != 4 {
		t.Fatalf("trail = %v", state.Trail)
	}
	if (*state.Trail)[2] != 3 {
		t.Errorf("trail flattening broken: %v", *state.Trail)
	}

	// Unchanged length, no resend.
	update = buildUpdate(w, nil, false)
	if findState(update, "p1").Trail != nil {
		t.Error("unchanged trail must not be resent")
	}

	// Cleared trail resyncs to an empty, non-nil array.
	p.Trail = p.Trail[:0]
	update = buildUpdate(w, nil, false)
	state = findState(update, "p1")
	if state.Trail == nil || len(*state.Trail) != 0 {
		t.Errorf("cleared trail = %v", state.Trail)
	}
}

func TestBuildUpdateFullLeavesCountersAlone(t *testing.T) {
	w := world.New(world.DefaultArena())
	w.CreatePlayer("p1", "n", "#FF6B6B", world.Vec2{X: 2500, Y: 2500})

	// Shared update settles the counters.
	buildUpdate(w, nil, false)

	full := buildUpdate(w, nil, true)
	if findState(full, "p1").Territory == nil {
		t.Error("full update must carry every territory")
	}

	// The full update must not disturb the shared stream.
	shared := buildUpdate(w, nil, false)
	if findState(shared, "p1").Territory != nil {
		t.Error("territory resent after full update")
	}
}

func TestUpdatePoolRefCounting(t *testing.T) {
	update := NewUpdate()
	update.Players = append(update.Players, IDPlayerState{ID: "x"})
	update.Retain(2)

	update.Pool()
	if len(update.Players) != 1 {
		t.Fatal("update reset while a recipient still holds it")
	}

	update.Pool()
	if len(update.Players) != 0 {
		t.Fatal("update not reset after the last recipient")
	}
}
