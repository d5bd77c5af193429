// Package avalanche implements the Avalanche Dispatcher (D): provider
// selection, forecast fetch/normalization, date filtering, and reply
// formatting, grounded on the teacher's avalanche service and
// original_source/app/avalanche/{base,canada,quebec,report}.py.
package avalanche

import (
	"treksafer/internal/geo"
	"treksafer/internal/types"
)

// Provider is the small interface every avalanche region variant
// implements, per §9's "dynamic polymorphism -> tagged variants" note.
type Provider interface {
	Name() string
	DistanceFromRegion(point types.Coordinate) geo.RegionDistance
	GetForecast(point types.Coordinate) (*types.ForecastDocument, error)
	CutoffHour() int
}

// httpGetter is the narrow dependency providers need from the cached HTTP
// client (component I).
type httpGetter interface {
	Get(url string) ([]byte, error)
}
