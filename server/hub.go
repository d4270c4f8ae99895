// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"

	"github.com/encircleio/encircle/server/world"
)

const (
	botsPeriod   = time.Second * 2
	updatePeriod = world.TickPeriod
)

// Hub owns the world and all clients. Every mutation happens on the hub
// goroutine; other goroutines reach it through the channels (and the world's
// atomic input slots).
type Hub struct {
	world     *world.World
	capture   *world.CaptureEngine
	collision *world.CollisionEngine
	cfg       Config

	clients ClientList // implemented as double-linked list

	// removed buffers player ids removed since the last broadcast.
	removed []string

	colorIndex int

	// clientCount mirrors clients.Len for the HTTP room-full check.
	clientCount int32

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client
	done       chan struct{}

	// Timer based events
	updateTicker *time.Ticker
	botsTicker   *time.Ticker
}

func NewHub(cfg Config) *Hub {
	return &Hub{
		world:        world.New(world.DefaultArena()),
		capture:      world.NewCaptureEngine(),
		collision:    world.NewCollisionEngine(),
		cfg:          cfg,
		inbound:      make(chan SignedInbound, 16+cfg.MaxPlayers*2),
		register:     make(chan Client, 8),
		unregister:   make(chan Client, 16),
		done:         make(chan struct{}),
		updateTicker: time.NewTicker(updatePeriod),
		botsTicker:   time.NewTicker(botsPeriod),
	}
}

// Stop shuts the hub down. Run drains remaining clients and returns.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				// If not same hub the message is old
				if h == in.Client.Data().Hub {
					in.Inbound(h, in.Client)
				}

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.updateTicker.C:
			h.tick()
		case <-h.botsTicker.C:
			h.tendBots()
		case <-h.done:
			h.updateTicker.Stop()
			h.botsTicker.Stop()
			for client := h.clients.First; client != nil; client = h.clients.Remove(client) {
				client.Close()
			}
			return
		}
	}
}

func (h *Hub) addClient(client Client) {
	h.clients.Add(client)
	data := client.Data()
	data.Hub = h
	data.needsFull = true

	r := getRand()
	var id, name string
	if client.Bot() {
		id = world.BotIDPrefix + newID()
		name = randomBotName(r)
	} else {
		id = newID()
		name = "player-" + id[:8]
	}
	pos := h.findSpawnPosition(r)
	poolRand(r)

	color := world.Colors[h.colorIndex%len(world.Colors)]
	h.colorIndex++

	h.world.CreatePlayer(id, name, color, pos)
	data.PlayerID = id

	atomic.StoreInt32(&h.clientCount, int32(h.clients.Len))

	client.Init()
	client.Send(Welcome{
		PlayerID:    id,
		ArenaX:      h.world.Arena.Center.X,
		ArenaY:      h.world.Arena.Center.Y,
		ArenaRadius: h.world.Arena.Radius,
	})

	if !client.Bot() {
		log.Println("client registered:", id)
	}
}

func (h *Hub) removeClient(client Client) {
	client.Close()

	data := client.Data()
	if id := data.PlayerID; id != "" {
		h.world.RemovePlayer(id)
		h.removed = append(h.removed, id)
	}

	data.Hub = nil
	h.clients.Remove(client)
	atomic.StoreInt32(&h.clientCount, int32(h.clients.Len))
}

// join handles the Join inbound: renames a live player, respawns a dead one.
func (h *Hub) join(client Client, name string) {
	id := client.Data().PlayerID
	p := h.world.Player(id)
	if p == nil {
		return
	}
	if name == "" {
		name = p.Name
	}

	if !p.Dead {
		p.Name = name
		return
	}

	// Respawn under the same id with a fresh seed territory.
	color := p.Color
	h.world.RemovePlayer(id)

	r := getRand()
	pos := h.findSpawnPosition(r)
	poolRand(r)

	respawned := h.world.CreatePlayer(id, name, color, pos)
	// The flat length may coincide with the old territory's; force resync.
	respawned.TerritoryChanged = true
}

// tick advances the simulation one step and broadcasts the result. A panic
// abandons the tick but not the hub.
func (h *Hub) tick() {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			ticksSkipped.Inc()
			log.Println("tick panic:", r)
		}
	}()

	const dt = 1.0 / world.TicksPerSecond

	h.world.ApplyInputs()
	h.world.Integrate(dt)
	h.capture.Update(h.world)
	h.collision.Update(h.world)

	h.logEvents()
	h.broadcast()

	recordTick(time.Since(start))
}

func (h *Hub) broadcast() {
	if h.clients.Len == 0 {
		h.removed = h.removed[:0]
		return
	}

	shared := buildUpdate(h.world, h.removed, false)
	h.removed = h.removed[:0]

	sharedCount := 0
	for client := h.clients.First; client != nil; client = client.Data().Next {
		if !client.Data().needsFull {
			sharedCount++
		}
	}

	// One reference per recipient; an extra one covers the case of every
	// client needing a full resync.
	shared.Retain(sharedCount + 1)

	for client := h.clients.First; client != nil; client = client.Data().Next {
		data := client.Data()
		if data.needsFull {
			data.needsFull = false
			full := buildUpdate(h.world, nil, true)
			full.Retain(1)
			client.Send(full)
		} else {
			client.Send(shared)
		}
	}

	shared.Pool()
}

// logEvents moves the engines' per-tick outputs to the event log and metrics.
func (h *Hub) logEvents() {
	for _, capture := range h.capture.Captures {
		capturesTotal.Inc()
		h.logEvent("capture", capture.PlayerID, capture.Score, "")
	}
	if n := h.capture.Rejected; n > 0 {
		capturesRejected.Add(float64(n))
	}
	if n := h.capture.Repaired; n > 0 {
		log.Println("repaired trail state for", n, "players")
	}
	for _, id := range h.capture.Wins {
		winsTotal.Inc()
		h.logEvent("win", id, 0, "")
		log.Println("game won by", id)
	}
	for _, kill := range h.collision.Kills {
		killsTotal.Inc()
		h.logEvent("kill", kill.Victim, 0, kill.By)
	}
}

func (h *Hub) logEvent(event, playerID string, score int, extra string) {
	if h.cfg.EventLog == "" {
		return
	}

	e := GameEvent{
		Time:     unixMillis(),
		Event:    event,
		PlayerID: playerID,
		Score:    score,
		Extra:    extra,
	}
	if err := AppendLog(h.cfg.EventLog, e); err != nil {
		log.Println("event log error:", err)
	}
}

// tendBots destroys long-dead bots and keeps the room populated while few
// humans are around.
func (h *Hub) tendBots() {
	humans := 0
	for client := h.clients.First; client != nil; client = client.Data().Next {
		if !client.Bot() {
			humans++
			continue
		}

		if p := h.world.Player(client.Data().PlayerID); p != nil && p.Dead && p.DeathTimer > world.BotRemoveDelay {
			client.Destroy()
		}
	}
	recordPopulation(h.clients.Len, h.clients.Len-humans)

	if humans >= h.cfg.MinHumanPlayersForBots {
		return
	}

	// Add as many as fit in the channel but don't block because it would deadlock
	for i := h.clients.Len + len(h.register) - len(h.unregister); i < h.cfg.TargetTotalPlayers; i++ {
		select {
		case h.register <- &BotClient{}:
		default:
			return
		}
	}
}

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}
