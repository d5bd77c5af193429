//go:build integration

package aqi

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"treksafer/internal/httpcache"
	"treksafer/internal/types"
)

func TestClient_Current_Integration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cacheDir := t.TempDir()
	httpClient := httpcache.New(logger, cacheDir, time.Hour, 30*time.Second)
	client := NewClient(logger, httpClient)

	point := types.NewCoordinate(49.2827, -123.1207) // Vancouver, BC

	t.Logf("fetching current AQI for %s", point)
	value, ok := client.Current(point)
	if !ok {
		t.Fatal("expected a current AQI reading, got none")
	}
	t.Logf("US AQI: %d", value)
	if value < 0 {
		t.Errorf("AQI should never be negative, got %d", value)
	}
}
