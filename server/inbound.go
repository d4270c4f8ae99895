// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/finnbear/moderation"
)

const (
	playerNameLengthMin = 1
	playerNameLengthMax = 16
)

// Make sure to register in init function
type (
	// Input sets the sender's target heading in radians.
	Input struct {
		Angle float64 `json:"angle"`
	}

	// Join names (or renames) the sender, and respawns them if dead.
	Join struct {
		Username string `json:"username"`
	}

	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}
)

func init() {
	registerInbound(
		Input{},
		Join{},
	)
}

var reservedNames = [...]string{
	"admin",
	"administrator",
	"console",
	"dev",
	"developer",
	"mod",
	"moderator",
	"npc",
	"owner",
	"root",
	"server",
	"staff",
	"system",
}

func (data Input) Inbound(h *Hub, client Client) {
	// Dead and unknown players are dropped inside; latest input wins.
	h.world.SetInput(client.Data().PlayerID, data.Angle)
}

func (data Join) Inbound(h *Hub, client Client) {
	name, ok := sanitizeName(data.Username)
	if !ok {
		name = ""
	}

	h.join(client, name)
}

func (data InvalidInbound) Inbound(_ *Hub, _ Client) {}

func trimUtf8(in string, low, high int) (str string, ok bool) {
	if !utf8.ValidString(in) {
		return "", false
	}

	// Remove spaces
	str = strings.TrimSpace(in)
	str = strings.TrimFunc(str, func(r rune) bool {
		// NOTE: The following characters are not detected by
		// unicode.IsSpace() but show up as blank

		// https://www.compart.com/en/unicode/U+2800
		// https://www.compart.com/en/unicode/U+200B
		return r == 0x2800 || r == 0x200B
	})

	// Too long but can resize down
	if len(str) > high {
		var builder strings.Builder
		for _, r := range str {
			if builder.Len()+utf8.RuneLen(r) > high {
				break
			}
			builder.WriteRune(r)
		}
		str = builder.String()
	}

	// Too short
	if len(str) < low {
		return "", false
	}
	ok = true
	return
}

// sanitizeName validates, trims and censors a display name.
func sanitizeName(text string) (string, bool) {
	// Remove these characters
	// Brackets are used in formatting
	// * is used for censoring
	const removals = "()[]{}*"
	for i := 0; i < len(removals); i++ {
		text = strings.ReplaceAll(text, removals[i:i+1], "")
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, text)

	text, ok := trimUtf8(text, playerNameLengthMin, playerNameLengthMax)
	if !ok {
		return "", false
	}

	lower := strings.ToLower(text)
	for _, reservedName := range reservedNames {
		if lower == reservedName {
			return "", false
		}
	}

	// Censor
	result := moderation.Scan(text)
	if result.Is(moderation.Inappropriate) {
		if result.Is(moderation.Inappropriate & moderation.Moderate) {
			return "", false
		}
		text, _ = moderation.Censor(text, moderation.Inappropriate)
	}

	return text, true
}
