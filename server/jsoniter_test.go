// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"testing"
)

func TestDecodeMessageInput(t *testing.T) {
	var message Message
	err := json.Unmarshal([]byte(`{"type":"input","data":{"angle":1.5}}`), &message)
	if err != nil {
		t.Fatal(err)
	}

	in, ok := message.Data.(Input)
	if !ok {
		t.Fatalf("expected Input, got %T", message.Data)
	}
	if in.Angle != 1.5 {
		t.Errorf("angle = %v", in.Angle)
	}
}

func TestDecodeMessageDataBeforeType(t *testing.T) {
	var message Message
	err := json.Unmarshal([]byte(`{"data":{"username":"bob"},"type":"join"}`), &message)
	if err != nil {
		t.Fatal(err)
	}

	join, ok := message.Data.(Join)
	if !ok {
		t.Fatalf("expected Join, got %T", message.Data)
	}
	if join.Username != "bob" {
		t.Errorf("username = %q", join.Username)
	}
}

func TestDecodeMessageUnknownType(t *testing.T) {
	var message Message
	err := json.Unmarshal([]byte(`{"type":"frobnicate","data":{}}`), &message)
	if err != nil {
		t.Fatal(err)
	}

	invalid, ok := message.Data.(InvalidInbound)
	if !ok {
		t.Fatalf("expected InvalidInbound, got %T", message.Data)
	}
	if invalid.messageType != "frobnicate" {
		t.Errorf("messageType = %q", invalid.messageType)
	}
}

func TestDecodeMessageMissingType(t *testing.T) {
	var message Message
	if err := json.Unmarshal([]byte(`{"data":{"angle":1}}`), &message); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestDecodeMessageMissingData(t *testing.T) {
	var message Message
	err := json.Unmarshal([]byte(`{"type":"input"}`), &message)
	if err != nil {
		t.Fatal(err)
	}
	if in, ok := message.Data.(Input); !ok || in.Angle != 0 {
		t.Errorf("expected zero Input, got %#v", message.Data)
	}
}

func TestEncodeMessageWelcome(t *testing.T) {
	b, err := json.Marshal(Message{Data: Welcome{PlayerID: "p1", ArenaRadius: 2500}})
	if err != nil {
		t.Fatal(err)
	}

	s := string(b)
	for _, want := range []string{`"type":"welcome"`, `"playerID":"p1"`, `"arenaRadius":2500`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded message %s missing %s", s, want)
		}
	}
}

func TestEncodeUpdatePlayersAsMap(t *testing.T) {
	territory := []float64{0, 0, 100, 0, 100, 100}
	emptyTrail := []float64{}

	update := &Update{
		Players: []IDPlayerState{
			{ID: "bbb", PlayerState: PlayerState{X: 2, Trail: &emptyTrail}},
			{ID: "aaa", PlayerState: PlayerState{X: 1, Territory: &territory}},
		},
		Removed: []string{"ccc"},
	}

	b, err := json.Marshal(Message{Data: update})
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Players map[string]map[string]interface{} `json:"players"`
			Removed []string                          `json:"removed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Type != "update" {
		t.Errorf("type = %q", decoded.Type)
	}
	if len(decoded.Data.Players) != 2 {
		t.Fatalf("players = %v", decoded.Data.Players)
	}

	a := decoded.Data.Players["aaa"]
	if a == nil {
		t.Fatal("player aaa missing")
	}
	if got := a["territory"].([]interface{}); len(got) != 6 {
		t.Errorf("territory = %v", got)
	}
	if _, present := a["trail"]; present {
		t.Error("absent trail must not marshal")
	}

	b2 := decoded.Data.Players["bbb"]
	if got, present := b2["trail"]; !present {
		t.Error("empty trail must marshal as resync to empty")
	} else if len(got.([]interface{})) != 0 {
		t.Errorf("trail = %v", got)
	}
	if _, present := b2["territory"]; present {
		t.Error("absent territory must not marshal")
	}

	if len(decoded.Data.Removed) != 1 || decoded.Data.Removed[0] != "ccc" {
		t.Errorf("removed = %v", decoded.Data.Removed)
	}
}
