package geo

import (
	"math"

	"github.com/paulmach/orb"

	"treksafer/internal/types"
)

const earthRadiusM = 6378137.0

// ToMercator projects a WGS84 (EPSG:4326) coordinate into Web Mercator
// (EPSG:3857) meters. All distance math downstream of the geospatial index
// happens in this planar space, per spec.
func ToMercator(c types.Coordinate) orb.Point {
	x := earthRadiusM * degToRad(c.Longitude)
	y := earthRadiusM * math.Log(math.Tan(math.Pi/4+degToRad(c.Latitude)/2))
	return orb.Point{x, y}
}

func FromMercator(p orb.Point) types.Coordinate {
	lon := radToDeg(p[0] / earthRadiusM)
	lat := radToDeg(2*math.Atan(math.Exp(p[1]/earthRadiusM)) - math.Pi/2)
	return types.NewCoordinate(lat, lon)
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }

// Bearing returns the compass bearing in degrees [0, 360) from "from" to
// "to", both given as EPSG:3857 points. This mirrors compass_direction in
// the original source, which transforms to WGS84 and calls osmnx's bearing
// calculation; here the bearing is computed directly in the projected
// plane, which is equivalent for the short local distances this system
// deals with and avoids an extra round trip through degrees.
func Bearing(from, to orb.Point) float64 {
	dx := to[0] - from[0]
	dy := to[1] - from[1]
	// Mercator is north-up/east-right, so atan2(dx, dy) gives bearing
	// clockwise from north exactly like a compass.
	b := radToDeg(math.Atan2(dx, dy))
	if b < 0 {
		b += 360
	}
	return b
}

// compassRose is the 16-point rose used to snap a raw bearing. Index 16
// duplicates index 0 to absorb the wraparound at bearing == 360 cleanly,
// following the original's 17-entry direction table.
var compassRose = [17]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW", "N",
}

// SnapCompass rounds a bearing in degrees to the nearest 16-point compass
// rose direction (22.5 degree steps).
func SnapCompass(bearingDeg float64) string {
	idx := int(math.Round(bearingDeg/22.5)) % 17
	if idx < 0 {
		idx += 17
	}
	return compassRose[idx]
}
