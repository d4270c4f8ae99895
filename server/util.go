// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"math/rand"
	"sync"
	"time"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

var randPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(rand.Int63()))
	},
}

func getRand() *rand.Rand {
	return randPool.Get().(*rand.Rand)
}

func poolRand(r *rand.Rand) {
	randPool.Put(r)
}

// prob has a p probability of returning true.
func prob(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

func clampMagnitude(val, maximum float64) float64 {
	return min(max(val, -maximum), maximum)
}

func unixMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond/time.Nanosecond)
}
