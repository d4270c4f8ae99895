// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"alice", "alice", true},
		{"  bob  ", "bob", true},
		{"[alice]", "alice", true},
		{"a*b", "ab", true},
		{"", "", false},
		{"   ", "", false},
		{"admin", "", false},
		{"Admin", "", false},
		{"MODERATOR", "", false},
		{"\xff\xfe", "", false},
	}

	for _, c := range cases {
		got, ok := sanitizeName(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("sanitizeName(%q) = %q, %v; expected %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSanitizeNameTruncates(t *testing.T) {
	got, ok := sanitizeName(strings.Repeat("x", 64))
	if !ok {
		t.Fatal("long name must be truncated, not rejected")
	}
	if len(got) != playerNameLengthMax {
		t.Errorf("len = %d", len(got))
	}
}

func TestTrimUtf8MultibyteBoundary(t *testing.T) {
	// Truncation must never split a rune.
	got, ok := trimUtf8(strings.Repeat("é", 20), 1, playerNameLengthMax)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(got) > playerNameLengthMax || len(got)%2 != 0 {
		t.Errorf("got %q (%d bytes)", got, len(got))
	}
}
