// Package timezone resolves an IANA timezone name from a coordinate. It
// backs the avalanche dispatcher's fallback when an upstream forecast
// response omits its own timezone field.
package timezone

import (
	"fmt"
	"sync"

	"github.com/ringsaturn/tzf"

	"treksafer/internal/types"
)

// Service provides timezone lookup functionality.
type Service interface {
	GetTimezone(point types.Coordinate) (string, error)
}

type service struct {
	finder tzf.F
	mu     sync.RWMutex
}

var (
	instance *service
	once     sync.Once
)

// NewService creates or returns the singleton timezone service. tzf.Finder
// loads its dataset into memory once per process regardless of how many
// callers need it.
func NewService() (Service, error) {
	var err error
	once.Do(func() {
		finder, findErr := tzf.NewDefaultFinder()
		if findErr != nil {
			err = fmt.Errorf("initialize timezone finder: %w", findErr)
			return
		}
		instance = &service{finder: finder}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (s *service) GetTimezone(point types.Coordinate) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tz := s.finder.GetTimezoneName(point.Longitude, point.Latitude)
	if tz == "" {
		return "", fmt.Errorf("no timezone found for %v", point)
	}
	return tz, nil
}
