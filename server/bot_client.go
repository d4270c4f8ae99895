// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/encircleio/encircle/server/world"
)

const (
	// botDecidePeriod throttles steering decisions to 6 Hz.
	botDecidePeriod = 1.0 / 6.0

	// botWallMargin is how close to the arena boundary a bot gets before
	// turning back toward the center.
	botWallMargin = 300.0

	// botReturnTrailLen is the trail length (in points) past which a bot
	// heads home to bank its loop.
	botReturnTrailLen = 40

	// botWanderMax bounds a wander re-roll to +/-60 degrees of the current
	// heading.
	botWanderMax = math.Pi / 3
)

// BotClient drives a synthetic player through the same surface as a remote
// client: it consumes broadcast updates and submits Input messages. All its
// state is touched only by the hub goroutine.
type BotClient struct {
	ClientData

	noise  *perlin.Perlin
	noiseT float64

	decideAcc float64 // seconds since the last steering decision
	cooldown  float64 // seconds until the next wander re-roll
	wander    float64 // current wander target heading

	// View cached from updates.
	arenaCenter world.Vec2
	arenaRadius float64
	pos         world.Vec2
	heading     float64
	trailLen    int
	centroid    world.Vec2
	hasCentroid bool
	dead        bool

	destroying bool
}

func (bot *BotClient) Bot() bool {
	return true
}

func (bot *BotClient) Close() {}

func (bot *BotClient) Data() *ClientData {
	return &bot.ClientData
}

func (bot *BotClient) Destroy() {
	if bot.destroying {
		return // In case goroutine hasn't run yet
	}

	bot.destroying = true
	hub := bot.Hub

	// Needs to go through always.
	select {
	case hub.unregister <- bot:
	default:
		go func() {
			hub.unregister <- bot
		}()
	}
}

func (bot *BotClient) Init() {
	r := getRand()
	bot.noise = perlin.NewPerlin(2, 2, 3, r.Int63())
	bot.noiseT = r.Float64() * 100
	bot.wander = (r.Float64() - 0.5) * 2 * math.Pi

	// First input starts movement.
	bot.receiveAsync(Input{Angle: bot.wander})
	poolRand(r)
}

func (bot *BotClient) Send(out outbound) {
	if bot.destroying {
		out.Pool()
		return
	}

	switch data := out.(type) {
	case Welcome:
		bot.arenaCenter = world.Vec2{X: data.ArenaX, Y: data.ArenaY}
		bot.arenaRadius = data.ArenaRadius
	case *Update:
		bot.observe(data)

		bot.decideAcc += world.TickPeriod.Seconds()
		bot.cooldown -= world.TickPeriod.Seconds()
		if bot.decideAcc >= botDecidePeriod {
			bot.decideAcc = 0

			r := getRand()
			bot.decide(r)
			poolRand(r)
		}
	}

	out.Pool()
}

// observe refreshes the bot's view of itself from a broadcast update.
func (bot *BotClient) observe(update *Update) {
	for i := range update.Players {
		state := &update.Players[i]
		if state.ID != bot.PlayerID {
			continue
		}

		bot.pos = world.Vec2{X: state.X, Y: state.Y}
		bot.heading = state.Angle
		bot.dead = state.Dead

		if state.Trail != nil {
			bot.trailLen = len(*state.Trail) / 2
		}
		if state.Territory != nil {
			bot.centroid, bot.hasCentroid = flatCentroid(*state.Territory)
		}
		return
	}
}

func (bot *BotClient) decide(r *rand.Rand) {
	if bot.dead || bot.arenaRadius == 0 {
		return
	}

	var target float64
	switch {
	case bot.pos.Distance(bot.arenaCenter) > bot.arenaRadius-botWallMargin:
		// Too close to the wall, head back in.
		target = steerTo(bot.pos, bot.arenaCenter)
	case bot.trailLen > botReturnTrailLen && bot.hasCentroid:
		// Long trail is a liability, bank it.
		target = steerTo(bot.pos, bot.centroid)
	default:
		if bot.cooldown <= 0 {
			bot.noiseT += 1
			offset := clampMagnitude(bot.noise.Noise1D(bot.noiseT)*math.Pi, botWanderMax)
			bot.wander = bot.heading + offset
			bot.cooldown = 0.5 + r.Float64()*2
		}
		target = bot.wander
	}

	bot.receiveAsync(Input{Angle: target})
}

// receiveAsync doesn't deadlock the hub
func (bot *BotClient) receiveAsync(in inbound) {
	select {
	case bot.Hub.inbound <- SignedInbound{Client: bot, inbound: in}:
	default:
		// Drop bot messages to avoid downfall of server
	}
}

func steerTo(from, to world.Vec2) float64 {
	return to.Sub(from).Angle().Float()
}

func flatCentroid(flat []float64) (world.Vec2, bool) {
	n := len(flat) / 2
	if n == 0 {
		return world.Vec2{}, false
	}

	var sum world.Vec2
	for i := 0; i < n; i++ {
		sum.X += flat[2*i]
		sum.Y += flat[2*i+1]
	}
	return sum.Div(float64(n)), true
}
