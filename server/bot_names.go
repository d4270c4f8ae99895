// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"math/rand"
	"strings"
)

var botNames = [...]string{
	"blaze",
	"circuit",
	"comet",
	"dash",
	"drift",
	"echo",
	"ember",
	"fang",
	"flux",
	"ghost",
	"glitch",
	"havoc",
	"jinx",
	"loop",
	"mosaic",
	"nova",
	"onyx",
	"pixel",
	"quill",
	"ripple",
	"rogue",
	"scout",
	"shard",
	"static",
	"tide",
	"vector",
	"vertex",
	"wisp",
	"zephyr",
	"zigzag",
}

func randomBotName(r *rand.Rand) string {
	name := botNames[r.Intn(len(botNames))]
	if prob(r, 0.1) {
		name = strings.ToUpper(name)
	}
	return name
}
