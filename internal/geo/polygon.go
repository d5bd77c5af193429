package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// ContainsPoint reports whether p (in the same plane as ring) lies inside
// ring using the ray-casting algorithm, adapted from the point-in-polygon
// predicate used for avalanche zone lookup: the original tests WGS84
// lon/lat pairs against GeoJSON rings, this tests planar (x, y) pairs
// against projected rings, same algorithm either way.
func ContainsPoint(ring orb.Ring, p orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if ((yi > p[1]) != (yj > p[1])) &&
			(p[0] < (xj-xi)*(p[1]-yi)/(yj-yi)+xi) {
			inside = !inside
		}
	}
	return inside
}

// PolygonContains reports whether p lies inside poly, honoring hole rings:
// the outer ring (index 0) must contain p and no inner ring may.
func PolygonContains(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 || !ContainsPoint(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if ContainsPoint(hole, p) {
			return false
		}
	}
	return true
}

// MultiPolygonContains reports whether p lies inside any part of mp.
func MultiPolygonContains(mp orb.MultiPolygon, p orb.Point) bool {
	for _, poly := range mp {
		if PolygonContains(poly, p) {
			return true
		}
	}
	return false
}

// DistanceToRing returns the minimum planar distance from p to any segment
// of ring, along with the closest point on the ring.
func DistanceToRing(ring orb.Ring, p orb.Point) (dist float64, closest orb.Point) {
	dist = math.Inf(1)
	n := len(ring)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		d, cp := distanceToSegment(p, a, b)
		if d < dist {
			dist = d
			closest = cp
		}
	}
	return dist, closest
}

// DistanceToPolygon returns the minimum planar distance from p to poly's
// boundary, or 0 with p itself as the closest point if p is contained.
func DistanceToPolygon(poly orb.Polygon, p orb.Point) (dist float64, closest orb.Point) {
	if PolygonContains(poly, p) {
		return 0, p
	}
	dist = math.Inf(1)
	for _, ring := range poly {
		d, cp := DistanceToRing(ring, p)
		if d < dist {
			dist = d
			closest = cp
		}
	}
	return dist, closest
}

// DistanceToMultiPolygon returns the minimum planar distance from p to any
// part of mp.
func DistanceToMultiPolygon(mp orb.MultiPolygon, p orb.Point) (dist float64, closest orb.Point) {
	dist = math.Inf(1)
	for _, poly := range mp {
		d, cp := DistanceToPolygon(poly, p)
		if d < dist {
			dist = d
			closest = cp
		}
	}
	return dist, closest
}

func distanceToSegment(p, a, b orb.Point) (float64, orb.Point) {
	abx, aby := b[0]-a[0], b[1]-a[1]
	apx, apy := p[0]-a[0], p[1]-a[1]
	lenSq := abx*abx + aby*aby
	t := 0.0
	if lenSq > 0 {
		t = (apx*abx + apy*aby) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	cp := orb.Point{a[0] + t*abx, a[1] + t*aby}
	dx, dy := p[0]-cp[0], p[1]-cp[1]
	return math.Sqrt(dx*dx + dy*dy), cp
}
