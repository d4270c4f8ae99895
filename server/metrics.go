// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality; no per-player labels.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "encircle_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.0167, 0.05},
	})

	ticksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encircle_ticks_skipped_total",
		Help: "Ticks abandoned by the panic guard",
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "encircle_players",
		Help: "Current number of players, bots included",
	})

	botCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "encircle_bots",
		Help: "Current number of bot players",
	})

	capturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encircle_captures_total",
		Help: "Committed territory captures",
	})

	capturesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encircle_captures_rejected_total",
		Help: "Captures rejected by the acceptance policy",
	})

	killsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encircle_kills_total",
		Help: "Players killed by trail crossings",
	})

	winsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encircle_wins_total",
		Help: "Victories latched",
	})

	connectionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encircle_connections_rejected_total",
		Help: "Websocket connections rejected because the room was full",
	})
)

func recordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

func recordPopulation(players, bots int) {
	playerCount.Set(float64(players))
	botCount.Set(float64(bots))
}
