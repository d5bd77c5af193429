package timezone

import (
	"testing"

	"treksafer/internal/types"
)

func TestNewService_Singleton(t *testing.T) {
	a, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	b, err := NewService()
	if err != nil {
		t.Fatalf("NewService (second call): %v", err)
	}
	if a != b {
		t.Fatal("expected NewService to return the same singleton instance")
	}
}

func TestGetTimezone_Whistler(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	tz, err := svc.GetTimezone(types.NewCoordinate(50.1163, -122.9574))
	if err != nil {
		t.Fatalf("GetTimezone: %v", err)
	}
	if tz != "America/Vancouver" {
		t.Errorf("expected America/Vancouver, got %q", tz)
	}
}
