// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"

	"golang.org/x/net/netutil"

	"github.com/encircleio/encircle/server"
)

func main() {
	cfg := server.ConfigFromEnv()

	// Flags override the environment.
	var (
		port           int
		maxConnections int
		eventLog       string
	)
	flag.IntVar(&port, "port", cfg.Port, "http service port")
	flag.IntVar(&maxConnections, "max-connections", cfg.MaxConnections, "maximum number of inbound TCP connections")
	flag.StringVar(&eventLog, "event-log", cfg.EventLog, "CSV file for game events, empty disables")
	flag.Parse()

	cfg.Port = port
	cfg.MaxConnections = maxConnections
	cfg.EventLog = eventLog

	hub := server.NewHub(cfg)
	go hub.Run()

	l, err := net.Listen("tcp", fmt.Sprint(":", cfg.Port))
	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, cfg.MaxConnections)

	log.Printf("encircle server listening on :%d", cfg.Port)
	log.Fatal("Serve: ", http.Serve(l, hub.Router()))
}
