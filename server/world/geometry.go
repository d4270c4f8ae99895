// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
)

// Pure polygon and segment math. Every boundary walk is modular over the
// vertex count; polygons are plain vertex sequences with implicit closure.

// BoundaryHit is an intersection with a polygon boundary: the point itself
// and the index of the edge (poly[i] -> poly[i+1 mod n]) it lies on.
type BoundaryHit struct {
	Point Vec2
	Edge  int
}

// PointInPolygon reports whether p is inside poly by even-odd ray casting.
// Points exactly on edges resolve by the strict > asymmetry of the test.
func PointInPolygon(p Vec2, poly []Vec2) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// SegmentIntersection returns the intersection of segments a->b and c->d.
// Parallel and collinear segments are treated as non-intersecting.
func SegmentIntersection(a, b, c, d Vec2) (Vec2, bool) {
	den := (d.Y-c.Y)*(b.X-a.X) - (d.X-c.X)*(b.Y-a.Y)
	if den == 0 {
		return Vec2{}, false
	}

	ua := ((d.X-c.X)*(a.Y-c.Y) - (d.Y-c.Y)*(a.X-c.X)) / den
	ub := ((b.X-a.X)*(a.Y-c.Y) - (b.Y-a.Y)*(a.X-c.X)) / den
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Vec2{}, false
	}

	return Vec2{
		X: a.X + ua*(b.X-a.X),
		Y: a.Y + ua*(b.Y-a.Y),
	}, true
}

// FindBoundaryIntersection returns the first polygon edge, in index order,
// whose segment intersects p1->p2.
func FindBoundaryIntersection(p1, p2 Vec2, poly []Vec2) (BoundaryHit, bool) {
	n := len(poly)
	for i := 0; i < n; i++ {
		point, ok := SegmentIntersection(p1, p2, poly[i], poly[(i+1)%n])
		if ok {
			return BoundaryHit{Point: point, Edge: i}, true
		}
	}
	return BoundaryHit{}, false
}

// ExtractBoundaryArc walks vertices forward from (startEdge+1) mod n up to
// and including endEdge. With startEdge == endEdge this is a full boundary
// tour. Intersection points themselves are not included.
func ExtractBoundaryArc(poly []Vec2, startEdge, endEdge int) []Vec2 {
	n := len(poly)
	if n == 0 {
		return nil
	}

	arc := make([]Vec2, 0, n)
	i := (startEdge + 1) % n
	for {
		arc = append(arc, poly[i])
		if i == endEdge%n {
			break
		}
		i = (i + 1) % n
	}
	return arc
}

// SignedArea is the shoelace sum. Positive denotes clockwise winding in this
// coordinate system (y increases downward).
func SignedArea(poly []Vec2) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum * 0.5
}

func Area(poly []Vec2) float64 {
	return math.Abs(SignedArea(poly))
}

// EnsureClockwise reverses poly in place if it winds counterclockwise and
// returns it.
func EnsureClockwise(poly []Vec2) []Vec2 {
	if SignedArea(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	return poly
}

// SimplifyPolygon keeps poly[0] and every subsequent vertex further than
// tolerance from the last kept vertex. Closure is preserved implicitly
// because the first vertex is always kept.
func SimplifyPolygon(poly []Vec2, tolerance float64) []Vec2 {
	if len(poly) == 0 {
		return nil
	}

	tol2 := tolerance * tolerance
	simplified := make([]Vec2, 1, len(poly))
	simplified[0] = poly[0]
	last := poly[0]

	for _, p := range poly[1:] {
		if p.DistanceSquared(last) > tol2 {
			simplified = append(simplified, p)
			last = p
		}
	}
	return simplified
}

// PolygonCentroid is the arithmetic mean of the vertices.
func PolygonCentroid(poly []Vec2) Vec2 {
	var sum Vec2
	if len(poly) == 0 {
		return sum
	}
	for _, p := range poly {
		sum = sum.Add(p)
	}
	return sum.Div(float64(len(poly)))
}

// NearestVertex returns the index of the polygon vertex closest to p.
func NearestVertex(p Vec2, poly []Vec2) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range poly {
		if d := v.DistanceSquared(p); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// PolygonFinite reports whether every vertex is free of NaN/Inf.
func PolygonFinite(poly []Vec2) bool {
	for _, p := range poly {
		if !p.Finite() {
			return false
		}
	}
	return true
}

// ComputeCapture builds the new territory from a closed trail loop. Two
// candidate polygons are formed from the trail and the boundary arcs between
// exit and entry; the one enclosing the larger absolute area wins, which is
// always the expansion regardless of winding order.
func ComputeCapture(territory, trail []Vec2, exit, entry BoundaryHit) []Vec2 {
	base := make([]Vec2, 0, len(trail)+len(territory)+2)
	base = append(base, exit.Point)
	base = append(base, trail...)
	base = append(base, entry.Point)

	if exit.Edge == entry.Edge {
		// Loop only, or loop plus a full boundary tour.
		expansion := append(append([]Vec2{}, base...), ExtractBoundaryArc(territory, exit.Edge, exit.Edge)...)
		return largerArea(base, expansion)
	}

	arcA := ExtractBoundaryArc(territory, exit.Edge, entry.Edge)
	arcB := ExtractBoundaryArc(territory, entry.Edge, exit.Edge)

	// Walk back along the boundary from entry to exit, either against arcA
	// or with arcB.
	candidateA := append([]Vec2{}, base...)
	for i := len(arcA) - 1; i >= 0; i-- {
		candidateA = append(candidateA, arcA[i])
	}

	candidateB := append(append([]Vec2{}, base...), arcB...)

	return largerArea(candidateA, candidateB)
}

func largerArea(a, b []Vec2) []Vec2 {
	if Area(a) >= Area(b) {
		return a
	}
	return b
}
