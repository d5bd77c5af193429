package geo

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// Record is one row of a shapefile: its attribute columns plus geometry
// already reprojected to Web Mercator. This is the "typed record sequence"
// design note calls for in place of GeoDataFrame iteration.
type Record struct {
	Attrs    map[string]string
	Geometry orb.MultiPolygon
}

// PolygonSet is a read-only, planar-projected polygon collection as loaded
// from one shapefile bundle.
type PolygonSet struct {
	Records []Record
}

// Index loads zipped ESRI shapefiles on demand and memoizes the result in a
// bounded LRU, keyed by path, per spec §3's Lifecycle note. A single mutex
// inside the LRU (hashicorp/golang-lru is internally synchronized) guards
// hit/miss/insert; callers never see partial state.
type Index struct {
	logger *slog.Logger
	cache  *lru.Cache[string, *PolygonSet]
}

// NewIndex builds an Index whose LRU holds at most size entries — sized to
// the configured source count per spec (e.g. 16).
func NewIndex(logger *slog.Logger, size int) *Index {
	if size <= 0 {
		size = 16
	}
	cache, _ := lru.New[string, *PolygonSet](size)
	return &Index{logger: logger.With("component", "geo.Index"), cache: cache}
}

// LoadPerimeters returns the polygon set at path, from cache if present.
// A missing or corrupt file degrades to an empty set rather than an error,
// per §4.B: "each query returns a degraded but well-defined result".
func (idx *Index) LoadPerimeters(path string) *PolygonSet {
	if set, ok := idx.cache.Get(path); ok {
		return set
	}
	set, err := loadShapefileZip(path)
	if err != nil {
		idx.logger.Warn("shapefile load failed, degrading to empty set", "path", path, "error", err)
		set = &PolygonSet{}
	}
	idx.cache.Add(path, set)
	return set
}

// loadShapefileZip extracts the .shp/.shx/.dbf triple from a zip archive
// into a temp directory and reads it with go-shp. The shapefiles this
// system consumes are always zipped bundles per §6's filesystem layout.
func loadShapefileZip(zipPath string) (*PolygonSet, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open shapefile zip %s: %w", zipPath, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "treksafer-shp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var shpBase string
	for _, f := range r.File {
		ext := filepath.Ext(f.Name)
		switch ext {
		case ".shp", ".shx", ".dbf":
		default:
			continue
		}
		if err := extractZipEntry(f, tmpDir); err != nil {
			return nil, err
		}
		if ext == ".shp" {
			shpBase = filepath.Join(tmpDir, filepath.Base(f.Name))
		}
	}
	if shpBase == "" {
		return nil, fmt.Errorf("no .shp member found in %s", zipPath)
	}

	reader, err := shp.Open(shpBase)
	if err != nil {
		return nil, fmt.Errorf("open extracted shapefile: %w", err)
	}
	defer reader.Close()

	fields := reader.Fields()
	var set PolygonSet
	for reader.Next() {
		n, shape := reader.Shape()
		mp := shapeToMultiPolygon(shape)
		if mp == nil {
			continue
		}
		attrs := make(map[string]string, len(fields))
		for k, f := range fields {
			attrs[f.String()] = reader.ReadAttribute(n, k)
		}
		set.Records = append(set.Records, Record{Attrs: attrs, Geometry: mp})
	}
	return &set, nil
}

func extractZipEntry(f *zip.File, destDir string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	dst, err := os.Create(filepath.Join(destDir, filepath.Base(f.Name)))
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", f.Name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, rc); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

// shapeToMultiPolygon converts a go-shp shape to a Mercator-projected
// orb.MultiPolygon. Rings come in WGS84 degrees in the boundary/perimeter
// shapefiles this system reads; they are projected once here so every
// downstream distance computation stays in EPSG:3857 meters.
func shapeToMultiPolygon(s shp.Shape) orb.MultiPolygon {
	poly, ok := s.(*shp.PolygonZ)
	if ok {
		return ringsToMercator(poly.Points, poly.Parts)
	}
	if p, ok := s.(*shp.Polygon); ok {
		return ringsToMercator(p.Points, p.Parts)
	}
	return nil
}

func ringsToMercator(points []shp.Point, parts []int32) orb.MultiPolygon {
	if len(points) == 0 {
		return nil
	}
	var rings []orb.Ring
	for i := 0; i < len(parts); i++ {
		start := int(parts[i])
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range points[start:end] {
			merc := lonLatToMercator(pt.X, pt.Y)
			ring = append(ring, merc)
		}
		rings = append(rings, ring)
	}
	// Treat every ring as its own polygon outer shell. Hole detection by
	// winding order is not needed for this system's containment/distance
	// queries, which only care about the union of rings.
	mp := make(orb.MultiPolygon, 0, len(rings))
	for _, ring := range rings {
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}

func lonLatToMercator(lon, lat float64) orb.Point {
	const earthRadius = earthRadiusM
	x := earthRadius * degToRad(lon)
	y := earthRadius * math.Log(math.Tan(math.Pi/4+degToRad(lat)/2))
	return orb.Point{x, y}
}
