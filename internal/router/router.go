// Package router implements the Request Router (G): orchestration of a
// single inbound message through parse -> {fire, avalanche} -> format,
// including auto-detection of the data type, per spec.md §4.G.
package router

import (
	"log/slog"
	"strings"
	"time"

	"treksafer/internal/avalanche"
	"treksafer/internal/config"
	"treksafer/internal/parser"
	"treksafer/internal/reply"
	"treksafer/internal/types"
)

// aqiFetcher is the narrow dependency the router needs from component E.
type aqiFetcher interface {
	Current(point types.Coordinate) (value int, ok bool)
}

// fireFinder is the narrow dependency the router needs from component C.
// *fires.Finder satisfies it; tests substitute a fake.
type fireFinder interface {
	Find(point types.Coordinate, filters types.Filters, defaultStatus string, defaultSizeHa, defaultRadiusKM float64) (records []types.FirePerimeter, effectiveRadiusKM float64, outOfRange bool)
}

// avalancheDispatcher is the narrow dependency the router needs from
// component D. *avalanche.Dispatcher satisfies it; tests substitute a fake.
type avalancheDispatcher interface {
	HasData(point types.Coordinate) bool
	Forecast(point types.Coordinate) (provider avalanche.Provider, doc *types.ForecastDocument, ok bool)
}

// Router ties together a single request's parse -> dispatch -> format
// pipeline. It holds no per-request state; Handle is safe to call
// concurrently from any number of transport tasks, per §5.
type Router struct {
	logger     *slog.Logger
	cfg        *config.Settings
	finder     fireFinder
	dispatcher avalancheDispatcher
	aqi        aqiFetcher
}

func New(logger *slog.Logger, cfg *config.Settings, finder fireFinder, dispatcher avalancheDispatcher, aqiClient aqiFetcher) *Router {
	return &Router{
		logger:     logger.With("component", "router.Router"),
		cfg:        cfg,
		finder:     finder,
		dispatcher: dispatcher,
		aqi:        aqiClient,
	}
}

// Handle runs the full router algorithm over one inbound message body and
// returns the outbound reply text. Per §8's universal invariant, the
// result is always a finite, non-empty string.
func (r *Router) Handle(body string) string {
	text := strings.TrimSpace(body)

	req, ok := parser.Parse(text)
	if !ok {
		r.logger.Info("inbound message", "body", text, "data_type", "none")
		return reply.NoGPS()
	}

	dataType := req.DataType
	if dataType == types.DataAuto {
		dataType = r.autoDetect(req.Coords)
	}
	r.logger.Info("inbound message", "body", text, "data_type", dataTypeName(dataType), "coords", req.Coords.String())

	switch dataType {
	case types.DataFire:
		return r.handleFire(req)
	case types.DataAvalanche:
		return r.handleAvalanche(req)
	default:
		r.logger.Warn("unrecognized data type after routing", "data_type", int(dataType))
		return reply.UnknownDataType()
	}
}

// autoDetect implements §4.G step 2: probe the avalanche dispatcher with
// a single forecast call (short-circuited by the HTTP cache on any
// subsequent real fetch); if it has data, route to avalanche, else fire.
func (r *Router) autoDetect(point types.Coordinate) types.DataType {
	if r.dispatcher != nil && r.dispatcher.HasData(point) {
		return types.DataAvalanche
	}
	return types.DataFire
}

func (r *Router) handleFire(req types.ParsedRequest) string {
	var aqiLine string
	if r.cfg.IncludeAQI && r.aqi != nil {
		if value, ok := r.aqi.Current(req.Coords); ok {
			aqiLine = reply.AQILine(value)
		} else {
			r.logger.Warn("aqi fetch failed, omitting aqi line", "coords", req.Coords.String())
		}
	}

	records, effectiveRadiusKM, outOfRange := r.finder.Find(req.Coords, req.Filters, r.cfg.FireStatus, r.cfg.FireSizeHa, r.cfg.FireRadiusKM)
	if outOfRange {
		return reply.OutsideOfArea()
	}
	if len(records) == 0 {
		return reply.NoFires(effectiveRadiusKM)
	}
	return reply.WithAQI(aqiLine, reply.Fires(records))
}

func (r *Router) handleAvalanche(req types.ParsedRequest) string {
	if r.dispatcher == nil {
		return reply.AvalancheOutsideArea()
	}
	provider, doc, ok := r.dispatcher.Forecast(req.Coords)
	if !ok {
		return reply.AvalancheOutsideArea()
	}
	if doc == nil {
		return reply.AvalancheUnavailable()
	}
	dates := avalanche.ResolveDates(doc, req.AvalancheFilter, time.Now(), provider.CutoffHour())
	if len(dates) == 0 {
		return reply.AvalancheUnavailable()
	}
	return avalanche.FormatForecast(doc, dates)
}

func dataTypeName(dt types.DataType) string {
	switch dt {
	case types.DataFire:
		return "fire"
	case types.DataAvalanche:
		return "avalanche"
	case types.DataAuto:
		return "auto"
	default:
		return "unknown"
	}
}
