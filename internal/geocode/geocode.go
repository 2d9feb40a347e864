// Package geocode resolves place names to map coordinates.
package geocode

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

// lookupFunc matches geocoder.Geocoding.
type lookupFunc func(geocoder.Address) (geocoder.Location, error)

// Google geocodes through the Google Maps API. The library keeps its key in a
// package variable, so only one key per process is supported.
type Google struct {
	lookup lookupFunc

	mu    sync.Mutex
	cache map[string]dashboard.Location
}

var setKey sync.Once

// NewGoogle configures the geocoder with apiKey.
func NewGoogle(apiKey string) *Google {
	setKey.Do(func() { geocoder.ApiKey = apiKey })
	return &Google{lookup: geocoder.Geocoding, cache: make(map[string]dashboard.Location)}
}

// Lookup returns the coordinates of city, country. Results are memoized.
func (g *Google) Lookup(ctx context.Context, city, country string) (dashboard.Location, error) {
	key := strings.ToLower(strings.TrimSpace(city) + "," + strings.TrimSpace(country))

	g.mu.Lock()
	loc, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return loc, nil
	}

	type answer struct {
		loc geocoder.Location
		err error
	}
	done := make(chan answer, 1)
	go func() {
		l, err := g.lookup(geocoder.Address{City: city, Country: country})
		done <- answer{l, err}
	}()

	select {
	case <-ctx.Done():
		return dashboard.Location{}, ctx.Err()
	case a := <-done:
		if a.err != nil {
			return dashboard.Location{}, fmt.Errorf("geocode %s, %s: %w", city, country, a.err)
		}
		loc = dashboard.Location{Lat: a.loc.Latitude, Lon: a.loc.Longitude}
	}

	g.mu.Lock()
	g.cache[key] = loc
	g.mu.Unlock()
	return loc, nil
}
