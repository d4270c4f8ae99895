// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/csv"
	"os"
	"strconv"
)

// GameEvent is one row of the CSV event log: a capture, kill or win with its
// unix-millisecond timestamp. Extra carries the killer id for kills and is
// empty otherwise.
type GameEvent struct {
	Time     int64
	Event    string
	PlayerID string
	Score    int
	Extra    string
}

// AppendLog appends the event to the CSV file at filename, creating the file
// if needed. Columns are fixed: time, event, playerID, score, extra.
func AppendLog(filename string, event GameEvent) (err error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write([]string{
		strconv.FormatInt(event.Time, 10),
		event.Event,
		event.PlayerID,
		strconv.Itoa(event.Score),
		event.Extra,
	})
	if err != nil {
		return
	}

	w.Flush()
	// Error from flush
	return w.Error()
}
