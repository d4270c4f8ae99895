// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
)

// CellSize is the uniform grid cell edge. Movement per tick is small
// relative to it, so bucketing a segment by its endpoints and midpoint is an
// acceptable approximation.
const CellSize = 100.0

type SegmentKind uint8

const (
	SegmentTrail SegmentKind = iota
	SegmentTerritory
)

// Segment is a value record inserted fresh each tick; identity never
// survives across ticks. Index is the trail array index of P1, required by
// the self-collision rule (meaningless for territory edges).
type Segment struct {
	PlayerID string
	Kind     SegmentKind
	Index    int
	P1, P2   Vec2
}

type cellKey struct {
	x, y int32
}

func keyOf(pos Vec2) cellKey {
	return cellKey{
		x: int32(math.Floor(pos.X / CellSize)),
		y: int32(math.Floor(pos.Y / CellSize)),
	}
}

// SpatialHash indexes line segments into a uniform grid for sub-linear
// neighbor queries.
type SpatialHash struct {
	cells map[cellKey][]Segment
}

func NewSpatialHash() *SpatialHash {
	return &SpatialHash{cells: make(map[cellKey][]Segment)}
}

// Insert buckets seg under the cells of both endpoints and the midpoint.
func (h *SpatialHash) Insert(seg Segment) {
	k1 := keyOf(seg.P1)
	k2 := keyOf(seg.P2)
	km := keyOf(seg.P1.Mid(seg.P2))

	h.cells[k1] = append(h.cells[k1], seg)
	if k2 != k1 {
		h.cells[k2] = append(h.cells[k2], seg)
	}
	if km != k1 && km != k2 {
		h.cells[km] = append(h.cells[km], seg)
	}
}

// Query appends the contents of the 3x3 cell neighborhood around pos to buf
// and returns it. Pass a reused buffer to avoid allocation.
func (h *SpatialHash) Query(pos Vec2, buf []Segment) []Segment {
	center := keyOf(pos)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			buf = append(buf, h.cells[cellKey{x: center.x + dx, y: center.y + dy}]...)
		}
	}
	return buf
}

// Clear drops all segments but keeps bucket capacity for the next tick.
func (h *SpatialHash) Clear() {
	for k, bucket := range h.cells {
		h.cells[k] = bucket[:0]
	}
}
