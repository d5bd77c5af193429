package router

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"treksafer/internal/avalanche"
	"treksafer/internal/config"
	"treksafer/internal/geo"
	"treksafer/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeFinder struct {
	records     []types.FirePerimeter
	radiusKM    float64
	outOfRange  bool
}

func (f *fakeFinder) Find(types.Coordinate, types.Filters, string, float64, float64) ([]types.FirePerimeter, float64, bool) {
	return f.records, f.radiusKM, f.outOfRange
}

type fakeProvider struct {
	name string
	doc  *types.ForecastDocument
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) DistanceFromRegion(types.Coordinate) geo.RegionDistance {
	return geo.RegionDistance{Contained: true}
}
func (p *fakeProvider) GetForecast(types.Coordinate) (*types.ForecastDocument, error) {
	return p.doc, nil
}
func (p *fakeProvider) CutoffHour() int { return 16 }

type fakeDispatcher struct {
	hasData bool
	found   bool
	doc     *types.ForecastDocument
}

func (d *fakeDispatcher) HasData(types.Coordinate) bool { return d.hasData }
func (d *fakeDispatcher) Forecast(types.Coordinate) (avalanche.Provider, *types.ForecastDocument, bool) {
	if !d.found {
		return nil, nil, false
	}
	return &fakeProvider{name: "test", doc: d.doc}, d.doc, true
}

func TestHandle_NoCoordinatesReturnsNoGPS(t *testing.T) {
	r := New(testLogger(), &config.Settings{}, &fakeFinder{}, &fakeDispatcher{}, nil)
	got := r.Handle("active all 25km")
	if got != "TrekSafer ERROR: No GPS location found" {
		t.Fatalf("unexpected reply: %s", got)
	}
}

func TestHandle_OutOfRangeFire(t *testing.T) {
	r := New(testLogger(), &config.Settings{}, &fakeFinder{outOfRange: true}, &fakeDispatcher{}, nil)
	got := r.Handle("fire (40.250308, -152.961979)")
	if !strings.Contains(got, "outside of supported fire perimeter area") {
		t.Fatalf("expected out-of-range reply, got %s", got)
	}
}

func TestHandle_NoFiresMentionsRadius(t *testing.T) {
	r := New(testLogger(), &config.Settings{FireRadiusKM: 50}, &fakeFinder{radiusKM: 50}, &fakeDispatcher{}, nil)
	got := r.Handle("fire (49.078353, -121.012207)")
	if !strings.Contains(got, "50") {
		t.Fatalf("expected reply to mention effective radius, got %s", got)
	}
}

func TestHandle_FireEntriesJoinedWithoutAQIWhenDisabled(t *testing.T) {
	records := []types.FirePerimeter{
		{Fire: "K12345", Status: types.StatusActive, DistanceM: 3000, Direction: "NW", HasSize: true, SizeHa: 120},
	}
	r := New(testLogger(), &config.Settings{IncludeAQI: false}, &fakeFinder{records: records}, &fakeDispatcher{}, nil)
	got := r.Handle("fire (49.078353, -121.012207)")
	if !strings.Contains(got, "Fire: K12345") {
		t.Fatalf("expected fire entry in reply, got %s", got)
	}
	if strings.Contains(got, "AQI:") {
		t.Fatalf("AQI line should be absent when disabled, got %s", got)
	}
}

type fakeAQI struct {
	value int
	ok    bool
}

func (a *fakeAQI) Current(types.Coordinate) (int, bool) { return a.value, a.ok }

func TestHandle_PrependsAQIWhenAvailable(t *testing.T) {
	records := []types.FirePerimeter{
		{Fire: "K12345", Status: types.StatusActive, DistanceM: 3000, Direction: "NW"},
	}
	r := New(testLogger(), &config.Settings{IncludeAQI: true}, &fakeFinder{records: records}, &fakeDispatcher{}, &fakeAQI{value: 42, ok: true})
	got := r.Handle("fire (49.078353, -121.012207)")
	if !strings.HasPrefix(got, "AQI: 42") {
		t.Fatalf("expected AQI prefix, got %s", got)
	}
}

func TestHandle_AvalancheAutoRoutesWhenDispatcherHasData(t *testing.T) {
	loc, err := time.LoadLocation("America/Vancouver")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Now().In(loc)
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	rating := types.DangerForecast{Alpine: "High", Treeline: "High", BelowTreeline: "Moderate"}
	doc := &types.ForecastDocument{
		Region:   "Spearhead",
		Timezone: "America/Vancouver",
		// Both today's and tomorrow's dates are populated so the assertion
		// below holds regardless of the cutoff-hour boundary the "current"
		// filter applies at whatever wall-clock time this test happens to run.
		Forecasts: map[string]types.DangerForecast{today: rating, tomorrow: rating},
	}
	r := New(testLogger(), &config.Settings{}, &fakeFinder{}, &fakeDispatcher{hasData: true, found: true, doc: doc}, nil)
	got := r.Handle("(50.1163, -122.9574)")
	if !strings.Contains(got, "Avalanche Forecast: Spearhead") {
		t.Fatalf("expected avalanche forecast, got %s", got)
	}
}

func TestHandle_AvalancheUnavailableWhenNoForecast(t *testing.T) {
	r := New(testLogger(), &config.Settings{}, &fakeFinder{}, &fakeDispatcher{found: true, doc: nil}, nil)
	got := r.Handle("(50.1163, -122.9574) avalanche")
	if !strings.Contains(got, "No avalanche forecast") {
		t.Fatalf("expected avalanche-unavailable reply, got %s", got)
	}
}

func TestHandle_AvalancheOutsideAreaWhenNoProvider(t *testing.T) {
	r := New(testLogger(), &config.Settings{}, &fakeFinder{}, &fakeDispatcher{found: false}, nil)
	got := r.Handle("(50.1163, -122.9574) avalanche")
	if !strings.Contains(got, "outside of supported avalanche forecast area") {
		t.Fatalf("expected avalanche-outside-area reply, got %s", got)
	}
}
