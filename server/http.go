// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the HTTP surface: health, websocket upgrade, metrics, and
// (in production) the static client.
func (h *Hub) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ws", h.ServeSocket)
	r.Handle("/metrics", promhttp.Handler())

	if h.cfg.NodeEnv == "production" {
		fileServer := http.FileServer(http.Dir(h.cfg.StaticDir))
		r.Handle("/*", fileServer)
	}

	return r
}

// ServeSocket upgrades a websocket connection and hands it to the hub.
func (h *Hub) ServeSocket(w http.ResponseWriter, r *http.Request) {
	if int(atomic.LoadInt32(&h.clientCount)) >= h.cfg.MaxPlayers {
		connectionsRejected.Inc()
		http.Error(w, "room full", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error", err)
		return
	}

	h.register <- NewSocketClient(conn)
}
