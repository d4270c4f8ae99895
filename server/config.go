// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server configuration. Defaults are production values;
// environment variables take precedence.
type Config struct {
	Port    int
	NodeEnv string

	// Bot population policy: bots keep the room alive while fewer than
	// MinHumanPlayersForBots humans are connected, topping the room up to
	// TargetTotalPlayers.
	MinHumanPlayersForBots int
	TargetTotalPlayers     int

	// MaxPlayers caps concurrent websocket clients; MaxConnections caps
	// inbound TCP connections at the listener.
	MaxPlayers     int
	MaxConnections int

	// StaticDir is served at / when NodeEnv is "production".
	StaticDir string

	// EventLog is the CSV file game events (kills, captures, wins) are
	// appended to. Empty disables event logging.
	EventLog string
}

func DefaultConfig() Config {
	return Config{
		Port:                   8192,
		NodeEnv:                "development",
		MinHumanPlayersForBots: 3,
		TargetTotalPlayers:     4,
		MaxPlayers:             10,
		MaxConnections:         256,
		StaticDir:              "./client/dist",
		EventLog:               "/tmp/encircle-events.log",
	}
}

// ConfigFromEnv loads .env when present and applies environment overrides.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if env := os.Getenv("NODE_ENV"); env != "" {
		cfg.NodeEnv = env
	}
	if n := getEnvInt("MIN_HUMAN_PLAYERS_FOR_BOTS", -1); n >= 0 {
		cfg.MinHumanPlayersForBots = n
	}
	if n := getEnvInt("TARGET_TOTAL_PLAYERS", 0); n > 0 {
		cfg.TargetTotalPlayers = n
	}
	if n := getEnvInt("MAX_PLAYERS", 0); n > 0 {
		cfg.MaxPlayers = n
	}
	if n := getEnvInt("MAX_CONNECTIONS", 0); n > 0 {
		cfg.MaxConnections = n
	}
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}
	if path, ok := os.LookupEnv("EVENT_LOG"); ok {
		cfg.EventLog = path
	}

	return cfg
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
