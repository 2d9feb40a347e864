package imagery

import (
	"fmt"
	"time"
)

// Source tags which kind of product a band list belongs to. It decides how
// timestamps are rendered and what the native sampling cadence is.
type Source int

const (
	// ModelSource is a gridded chemical-transport model product (hourly averages).
	ModelSource Source = iota
	// SatelliteSource is a satellite trace-gas column product (per-overpass samples).
	SatelliteSource
)

func (s Source) String() string {
	switch s {
	case ModelSource:
		return "model"
	case SatelliteSource:
		return "satellite"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Resolution is the native timestamp resolution of tables built for this source.
func (s Source) Resolution() time.Duration {
	if s == SatelliteSource {
		return time.Minute
	}
	return time.Hour
}

// BandScale pairs a band identifier with the factor that converts it to display units.
type BandScale struct {
	Band  string
	Scale float64
}

// BandSpec is an ordered band -> scale mapping. Order determines table column layout.
type BandSpec []BandScale

// NewBandSpec validates the pairs: bands must be unique and non-empty, scales positive.
func NewBandSpec(pairs ...BandScale) (BandSpec, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("band spec needs at least one band")
	}
	seen := make(map[string]struct{}, len(pairs))
	spec := make(BandSpec, 0, len(pairs))
	for _, p := range pairs {
		if p.Band == "" {
			return nil, fmt.Errorf("band spec: empty band name")
		}
		if p.Scale <= 0 {
			return nil, fmt.Errorf("band spec: scale for %q must be positive, got %g", p.Band, p.Scale)
		}
		if _, dup := seen[p.Band]; dup {
			return nil, fmt.Errorf("band spec: duplicate band %q", p.Band)
		}
		seen[p.Band] = struct{}{}
		spec = append(spec, p)
	}
	return spec, nil
}

// MustBandSpec is NewBandSpec for package-level literals.
func MustBandSpec(pairs ...BandScale) BandSpec {
	spec, err := NewBandSpec(pairs...)
	if err != nil {
		panic(err)
	}
	return spec
}

// Bands returns the band identifiers in declaration order.
func (s BandSpec) Bands() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Band
	}
	return out
}

// Scale returns the factor for band.
func (s BandSpec) Scale(band string) (float64, bool) {
	for _, p := range s {
		if p.Band == band {
			return p.Scale, true
		}
	}
	return 0, false
}
