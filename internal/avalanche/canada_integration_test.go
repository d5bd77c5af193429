//go:build integration

package avalanche

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"treksafer/internal/geo"
	"treksafer/internal/httpcache"
	"treksafer/internal/types"
)

func TestCanadaProvider_GetForecast_Integration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cacheDir := t.TempDir()
	client := httpcache.New(logger, cacheDir, time.Hour, 30*time.Second)
	index := geo.NewIndex(logger, 4)

	provider := NewCanadaProvider(logger, index, geo.BoundaryLayer{}, client, nil,
		"https://api.avalanche.ca/{lang}", "en", 25, 16)

	// Whistler/Spearhead, a point reliably inside Avalanche Canada's coverage.
	point := types.NewCoordinate(50.1163, -122.9574)

	t.Logf("fetching canada forecast for %s", point)
	doc, err := provider.GetForecast(point)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if doc == nil {
		t.Fatal("forecast document is nil")
	}

	t.Logf("region: %s, timezone: %s, dates: %d, problems: %d",
		doc.Region, doc.Timezone, len(doc.Forecasts), len(doc.Problems))

	if len(doc.Forecasts) == 0 {
		t.Error("expected at least one forecast date")
	}
	for date, df := range doc.Forecasts {
		t.Logf("  %s: alpine=%s treeline=%s below_treeline=%s", date, df.Alpine, df.Treeline, df.BelowTreeline)
	}
}
