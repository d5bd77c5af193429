package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// BoundaryLayer names a polygon set plus the attribute columns used to key
// and display its records, e.g. world countries keyed by ISO code, or
// Canadian provinces keyed by postal code. FilterField/FilterValue
// optionally restrict the layer to a single attribute value within a
// shared shapefile, e.g. the Quebec avalanche provider's region gated by
// canada_provinces.zip filtered to postal=="QC" rather than a dedicated
// boundary file.
type BoundaryLayer struct {
	Path        string
	KeyField    string
	NameField   string
	FilterField string
	FilterValue string
}

func (l BoundaryLayer) includes(attrs map[string]string) bool {
	if l.FilterField == "" {
		return true
	}
	return attrs[l.FilterField] == l.FilterValue
}

// RegionDistance is the explicit sum type behind the distance_from_region
// contract in §3: Contained means the point is strictly inside some
// polygon of the layer (analogous to Python's bare None); otherwise KM
// holds the distance to the nearest polygon, or +Inf if none qualifies.
type RegionDistance struct {
	Contained bool
	KM        float64
}

func containedDistance() RegionDistance  { return RegionDistance{Contained: true} }
func outOfRangeDistance() RegionDistance { return RegionDistance{KM: math.Inf(1)} }

// SourcesFor returns the set of KeyField values whose polygon lies within
// maxKM of point, across every record of the layer. Used for the fire
// finder's source selection (§4.C step 1).
func (idx *Index) SourcesFor(layer BoundaryLayer, point orb.Point, maxKM float64) []string {
	set := idx.LoadPerimeters(layer.Path)
	maxM := maxKM * 1000
	seen := map[string]bool{}
	var out []string
	for _, rec := range set.Records {
		if !layer.includes(rec.Attrs) {
			continue
		}
		d, _ := DistanceToMultiPolygon(rec.Geometry, point)
		if d <= maxM {
			key := rec.Attrs[layer.KeyField]
			if key != "" && !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}

// DistanceKM implements the distance_from_region contract for a single
// boundary layer: Contained if point falls inside any record's geometry,
// otherwise the nearest record's distance if within bufferKM, else +Inf.
func (idx *Index) DistanceKM(layer BoundaryLayer, point orb.Point, bufferKM float64) RegionDistance {
	set := idx.LoadPerimeters(layer.Path)
	if len(set.Records) == 0 {
		return outOfRangeDistance()
	}
	bufferM := bufferKM * 1000
	best := math.Inf(1)
	for _, rec := range set.Records {
		if !layer.includes(rec.Attrs) {
			continue
		}
		if MultiPolygonContains(rec.Geometry, point) {
			return containedDistance()
		}
		d, _ := DistanceToMultiPolygon(rec.Geometry, point)
		if d < best {
			best = d
		}
	}
	if best <= bufferM {
		return RegionDistance{KM: best / 1000}
	}
	return outOfRangeDistance()
}

// CoverOrNearest returns the NameField value of the containing record, or
// of the nearest record within bufferKM, or "" with found=false.
func (idx *Index) CoverOrNearest(layer BoundaryLayer, point orb.Point, bufferKM float64) (name string, found bool) {
	set := idx.LoadPerimeters(layer.Path)
	bufferM := bufferKM * 1000

	type candidate struct {
		name string
		dist float64
	}
	var candidates []candidate
	for _, rec := range set.Records {
		if !layer.includes(rec.Attrs) {
			continue
		}
		if MultiPolygonContains(rec.Geometry, point) {
			return rec.Attrs[layer.NameField], true
		}
		d, _ := DistanceToMultiPolygon(rec.Geometry, point)
		if d <= bufferM {
			candidates = append(candidates, candidate{rec.Attrs[layer.NameField], d})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	return candidates[0].name, true
}
