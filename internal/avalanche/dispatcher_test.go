package avalanche

import (
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"treksafer/internal/geo"
	"treksafer/internal/types"
)

type fakeProvider struct {
	name     string
	distance geo.RegionDistance
	doc      *types.ForecastDocument
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) DistanceFromRegion(types.Coordinate) geo.RegionDistance {
	return f.distance
}
func (f *fakeProvider) GetForecast(types.Coordinate) (*types.ForecastDocument, error) {
	return f.doc, nil
}
func (f *fakeProvider) CutoffHour() int { return 16 }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDispatcher_ContainmentWinsImmediately(t *testing.T) {
	near := &fakeProvider{name: "near", distance: geo.RegionDistance{KM: 2}}
	contained := &fakeProvider{name: "contained", distance: geo.RegionDistance{Contained: true}}
	d := NewDispatcher(testLogger(), []Provider{near, contained})

	p, ok := d.Select(types.NewCoordinate(50, -122))
	if !ok || p.Name() != "contained" {
		t.Fatalf("expected contained provider to win, got %v (ok=%v)", p, ok)
	}
}

func TestDispatcher_NearestWithinBufferWins(t *testing.T) {
	far := &fakeProvider{name: "far", distance: geo.RegionDistance{KM: 40}}
	near := &fakeProvider{name: "near", distance: geo.RegionDistance{KM: 5}}
	d := NewDispatcher(testLogger(), []Provider{far, near})

	p, ok := d.Select(types.NewCoordinate(50, -122))
	if !ok || p.Name() != "near" {
		t.Fatalf("expected nearer provider to win, got %v (ok=%v)", p, ok)
	}
}

func TestDispatcher_NoCoverage(t *testing.T) {
	out1 := &fakeProvider{name: "a", distance: geo.RegionDistance{KM: math.Inf(1)}}
	d := NewDispatcher(testLogger(), []Provider{out1})

	_, ok := d.Select(types.NewCoordinate(0, 0))
	if ok {
		t.Fatal("expected no provider to cover the point")
	}
}

func TestDispatcher_SelectionStableRegardlessOfOrder(t *testing.T) {
	contained := &fakeProvider{name: "contained", distance: geo.RegionDistance{Contained: true}}
	other := &fakeProvider{name: "other", distance: geo.RegionDistance{KM: 1}}

	d1 := NewDispatcher(testLogger(), []Provider{contained, other})
	d2 := NewDispatcher(testLogger(), []Provider{other, contained})

	p1, _ := d1.Select(types.NewCoordinate(50, -122))
	p2, _ := d2.Select(types.NewCoordinate(50, -122))
	if p1.Name() != "contained" || p2.Name() != "contained" {
		t.Fatalf("expected containing provider regardless of insertion order, got %v, %v", p1.Name(), p2.Name())
	}
}

func TestResolveDates_CurrentBeforeCutoff(t *testing.T) {
	doc := &types.ForecastDocument{
		Timezone: "America/Vancouver",
		Forecasts: map[string]types.DangerForecast{
			"2026-07-30": {},
			"2026-07-31": {},
		},
	}
	loc, _ := time.LoadLocation("America/Vancouver")
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, loc)
	dates := ResolveDates(doc, types.ForecastCurrent, now, 16)
	if len(dates) != 1 || dates[0] != "2026-07-31" {
		t.Fatalf("expected today before cutoff, got %v", dates)
	}
}

func TestResolveDates_CurrentAfterCutoff(t *testing.T) {
	doc := &types.ForecastDocument{
		Timezone: "America/Vancouver",
		Forecasts: map[string]types.DangerForecast{
			"2026-08-01": {},
		},
	}
	loc, _ := time.LoadLocation("America/Vancouver")
	now := time.Date(2026, 7, 31, 17, 0, 0, 0, loc)
	dates := ResolveDates(doc, types.ForecastCurrent, now, 16)
	if len(dates) != 1 || dates[0] != "2026-08-01" {
		t.Fatalf("expected tomorrow after cutoff, got %v", dates)
	}
}

func TestResolveDates_AllSortedAscending(t *testing.T) {
	doc := &types.ForecastDocument{
		Timezone: "America/Vancouver",
		Forecasts: map[string]types.DangerForecast{
			"2026-08-02": {}, "2026-07-31": {}, "2026-08-01": {},
		},
	}
	dates := ResolveDates(doc, types.ForecastAll, time.Now(), 16)
	want := []string{"2026-07-31", "2026-08-01", "2026-08-02"}
	if len(dates) != len(want) {
		t.Fatalf("unexpected dates: %v", dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("expected sorted %v, got %v", want, dates)
		}
	}
}
