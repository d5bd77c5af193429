package avalanche

import (
	"log/slog"
	"math"

	"treksafer/internal/types"
)

// Dispatcher implements the provider selection algorithm of §4.D:
// containment wins immediately (first provider, insertion order); else
// the finite, in-buffer distance smallest among the rest; else no
// coverage.
type Dispatcher struct {
	logger    *slog.Logger
	providers []Provider
}

func NewDispatcher(logger *slog.Logger, providers []Provider) *Dispatcher {
	return &Dispatcher{logger: logger.With("component", "avalanche.Dispatcher"), providers: providers}
}

// Select returns the winning provider, or ok=false if none covers point.
func (d *Dispatcher) Select(point types.Coordinate) (provider Provider, ok bool) {
	var best Provider
	bestKM := math.Inf(1)
	for _, p := range d.providers {
		dist := p.DistanceFromRegion(point)
		if dist.Contained {
			return p, true
		}
		if !math.IsInf(dist.KM, 1) && dist.KM < bestKM {
			best, bestKM = p, dist.KM
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// HasData probes whether point has an avalanche forecast at all, used by
// the router's auto-detect step (§4.G step 2). It performs the same
// selection (against the memoized polygon index) and a forecast fetch
// (through the HTTP cache), so a repeated call is effectively free.
func (d *Dispatcher) HasData(point types.Coordinate) bool {
	provider, ok := d.Select(point)
	if !ok {
		return false
	}
	doc, err := provider.GetForecast(point)
	if err != nil {
		d.logger.Warn("avalanche probe fetch failed", "provider", provider.Name(), "error", err)
		return false
	}
	return doc != nil && len(doc.Forecasts) > 0
}

// Forecast selects a provider and fetches its forecast document, or
// ok=false if no provider covers point.
func (d *Dispatcher) Forecast(point types.Coordinate) (provider Provider, doc *types.ForecastDocument, ok bool) {
	provider, ok = d.Select(point)
	if !ok {
		return nil, nil, false
	}
	doc, err := provider.GetForecast(point)
	if err != nil {
		d.logger.Warn("avalanche forecast fetch failed", "provider", provider.Name(), "error", err)
		return provider, nil, true
	}
	return provider, doc, true
}
