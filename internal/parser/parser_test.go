package parser

import (
	"math"
	"testing"

	"treksafer/internal/types"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParse_TrailingBracket(t *testing.T) {
	req, ok := Parse("Fire check inreachlink.com/ABC (50.7021714, -121.9725246)")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if !almostEqual(req.Coords.Latitude, 50.7021714) || !almostEqual(req.Coords.Longitude, -121.9725246) {
		t.Fatalf("unexpected coords: %v", req.Coords)
	}
}

func TestParse_NoCoordinates(t *testing.T) {
	if _, ok := Parse("active all 25km"); ok {
		t.Fatal("expected no coordinates to be found")
	}
}

func TestParse_BoundaryValues(t *testing.T) {
	valid := []string{"(0, 0)", "(90, 0)", "(-90, 0)", "(0, 180)", "(0, -180)"}
	for _, in := range valid {
		if _, ok := Parse(in); !ok {
			t.Errorf("expected %q to parse", in)
		}
	}
	invalid := []string{"(91, 0)", "(0, 181)"}
	for _, in := range invalid {
		if _, ok := Parse(in); ok {
			t.Errorf("expected %q to be rejected", in)
		}
	}
}

func TestParse_HemisphereOverridesSign(t *testing.T) {
	req, ok := Parse("-50.0 N, 122.0 W")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if req.Coords.Latitude <= 0 {
		t.Fatalf("hemisphere N should force positive latitude, got %v", req.Coords.Latitude)
	}
	if req.Coords.Longitude >= 0 {
		t.Fatalf("hemisphere W should force negative longitude, got %v", req.Coords.Longitude)
	}
}

func TestParse_DegreeHemisphereLeadingForm(t *testing.T) {
	req, ok := Parse("N 50.58, W 122.09")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if !almostEqual(req.Coords.Latitude, 50.58) || !almostEqual(req.Coords.Longitude, -122.09) {
		t.Fatalf("unexpected coords: %v", req.Coords)
	}
}

func TestParse_AppleMapsURL(t *testing.T) {
	req, ok := Parse("Check https://maps.apple.com/?coordinate=49.2827,-123.1207&q=Vancouver")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if !almostEqual(req.Coords.Latitude, 49.2827) {
		t.Fatalf("unexpected lat: %v", req.Coords.Latitude)
	}
}

func TestParse_GoogleMapsAtForm(t *testing.T) {
	req, ok := Parse("https://www.google.com/maps/@45.5017,-73.5673,15z")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if !almostEqual(req.Coords.Latitude, 45.5017) {
		t.Fatalf("unexpected lat: %v", req.Coords.Latitude)
	}
}

func TestParse_StatusFilterActiveWinsOverAll(t *testing.T) {
	req, ok := Parse("(49.078353, -121.012207) active all 30km")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if req.Filters.Status != "active" {
		t.Fatalf("expected active to win over all, got %q", req.Filters.Status)
	}
}

func TestParse_DistanceMilesConverted(t *testing.T) {
	req, ok := Parse("(49.078353, -121.012207) 10mi")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if !req.Filters.HasDistance || !almostEqual(req.Filters.DistanceKM, 16.09344) {
		t.Fatalf("unexpected distance: %+v", req.Filters)
	}
}

func TestParse_DataTypeAvalanche(t *testing.T) {
	req, ok := Parse("(50.1163, -122.9574) avalanche all")
	if !ok {
		t.Fatal("expected coordinates to be found")
	}
	if req.DataType != types.DataAvalanche {
		t.Fatalf("expected avalanche data type, got %v", req.DataType)
	}
	if req.AvalancheFilter != types.ForecastAll {
		t.Fatalf("expected all forecast filter, got %v", req.AvalancheFilter)
	}
}
