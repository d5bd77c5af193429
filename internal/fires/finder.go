package fires

import (
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"treksafer/internal/geo"
	"treksafer/internal/types"
)

// Finder is the Fire Finder component (C): it selects covering data
// sources via the geospatial index, loads the matching perimeter
// shapefile, and produces normalized, filtered FirePerimeter records.
type Finder struct {
	logger      *slog.Logger
	index       *geo.Index
	countries   geo.BoundaryLayer
	provinces   geo.BoundaryLayer
	sources     map[string]DataSource
	httpClient  httpGetter
	maxRadiusKM float64
}

func NewFinder(logger *slog.Logger, index *geo.Index, countries, provinces geo.BoundaryLayer, sources []DataSource, httpClient httpGetter, maxRadiusKM float64) *Finder {
	byName := make(map[string]DataSource, len(sources))
	for _, s := range sources {
		byName[s.Name] = s
	}
	return &Finder{
		logger:      logger.With("component", "fires.Finder"),
		index:       index,
		countries:   countries,
		provinces:   provinces,
		sources:     byName,
		httpClient:  httpClient,
		maxRadiusKM: maxRadiusKM,
	}
}

// Find runs the full §4.C algorithm. outOfRange is true when no DataSource
// covers the point at all (step 1); otherwise records holds every
// candidate after the status/size filter pipeline, in source-then-row
// iteration order with no implicit sort.
func (f *Finder) Find(point types.Coordinate, filters types.Filters, defaultStatus string, defaultSizeHa, defaultRadiusKM float64) (records []types.FirePerimeter, effectiveRadiusKM float64, outOfRange bool) {
	mercPoint := geo.ToMercator(point)

	requestRadiusKM := defaultRadiusKM
	if filters.HasDistance {
		requestRadiusKM = filters.DistanceKM
	}
	effectiveRadiusKM = math.Min(requestRadiusKM, f.maxRadiusKM)
	effectiveRadiusM := effectiveRadiusKM * 1000

	codes := map[string]bool{}
	for _, c := range f.index.SourcesFor(f.countries, mercPoint, f.maxRadiusKM) {
		codes[c] = true
	}
	for _, c := range f.index.SourcesFor(f.provinces, mercPoint, f.maxRadiusKM) {
		codes[c] = true
	}
	if len(codes) == 0 {
		return nil, effectiveRadiusKM, true
	}

	status := defaultStatus
	if filters.HasStatus {
		status = filters.Status
	}
	if _, known := types.ParseStatusLevel(status); !known && status != "all" && status != "" {
		f.logger.Warn("unrecognized status filter, records are not status-filtered", "status", status)
	}

	var out []types.FirePerimeter
	// Iterate sources sorted by name (byName does not keep the declared
	// order; sorting keeps results deterministic across runs, which still
	// satisfies "no implicit sort" at the record level since this only
	// orders the outer source loop).
	var names []string
	for code := range codes {
		if _, ok := f.sources[code]; ok {
			names = append(names, code)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, effectiveRadiusKM, true
	}

	for _, name := range names {
		src := f.sources[name]
		path := f.latestPerimeterFile(src)
		if path == "" {
			continue
		}
		set := f.index.LoadPerimeters(path)
		for _, rec := range set.Records {
			dist, closest := geo.DistanceToMultiPolygon(rec.Geometry, mercPoint)
			if dist > effectiveRadiusM {
				continue
			}
			bearing := geo.Bearing(mercPoint, closest)
			fp := f.normalize(src, rec.Attrs)
			fp.DistanceM = dist
			fp.Direction = geo.SnapCompass(bearing)
			out = append(out, fp)
		}
	}

	out = ApplyFilters(out, status, defaultSizeHa)
	return out, effectiveRadiusKM, false
}

// latestPerimeterFile globs shapefiles/<source>/<template-with-{DATE}→*>
// and picks the lexically greatest match: dates are zero-padded YYYYMMDD,
// so lexical order is chronological order, per §4.C step 2.
func (f *Finder) latestPerimeterFile(src DataSource) string {
	pattern := filepath.Join(src.ShapefileDir, strings.ReplaceAll(src.FilenameTemplate, "{DATE}", "*"))
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		f.logger.Warn("no perimeter file found", "source", src.Name, "pattern", pattern)
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}

func (f *Finder) normalize(src DataSource, raw map[string]string) types.FirePerimeter {
	fp := types.FirePerimeter{RawField: map[string]string{}}

	for normalized, mapping := range src.Fields {
		val, present := raw[mapping.RawField]
		if !present {
			continue
		}
		f.assignField(&fp, src, normalized, val, mapping.Transform)
	}

	if src.Aux != nil {
		if extra := enrich(f.logger, f.httpClient, src.Aux, rawRowFields(fp, raw)); extra != nil {
			for normalized, val := range extra {
				transform := ""
				if mapping, ok := src.Aux.Fields[normalized]; ok {
					transform = mapping.Transform
				}
				f.assignField(&fp, src, normalized, val, transform)
			}
		}
	}

	if fp.Name == "" {
		fp.Name = fp.Fire
	}
	return fp
}

// assignField routes one normalized field's value onto fp, whether it came
// from the primary shapefile row or an Aux enrichment call: both paths
// share the same Size/Fire/Name/Location/Status handling so an enrichment
// field can fill in any of them, not just spill into RawField.
func (f *Finder) assignField(fp *types.FirePerimeter, src DataSource, normalized, raw, transform string) {
	switch normalized {
	case "Size":
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return
		}
		if transform != "" {
			n = applyTransform(transform, n)
		}
		fp.SizeHa, fp.HasSize = n, true
	case "Fire":
		fp.Fire = raw
	case "Name":
		fp.Name = raw
	case "Location":
		fp.Location = raw
	case "Status":
		fp.Status = f.resolveStatus(src, raw)
	default:
		fp.RawField[normalized] = raw
	}
}

func rawRowFields(fp types.FirePerimeter, raw map[string]string) map[string]string {
	merged := make(map[string]string, len(raw))
	for k, v := range raw {
		merged[k] = v
	}
	merged["Fire"] = fp.Fire
	merged["Name"] = fp.Name
	return merged
}

func (f *Finder) resolveStatus(src DataSource, rawStatus string) types.StatusLevel {
	for levelName, rawValue := range src.StatusMap {
		if rawValue == rawStatus {
			if lvl, ok := types.ParseStatusLevel(levelName); ok {
				return lvl
			}
		}
	}
	f.logger.Warn("unrecognized status value", "source", src.Name, "status", rawStatus)
	return types.StatusUnknown
}
