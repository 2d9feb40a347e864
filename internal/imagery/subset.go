package imagery

import (
	"context"
	"fmt"
	"time"
)

// RegionScale is the spatial scale, in meters, of point extractions.
const RegionScale = 1000

// Backend is the remote imagery service.
type Backend interface {
	// Describe resolves a collection id to a handle listing its bands.
	Describe(ctx context.Context, id string) (Collection, error)
	// GetRegion returns the per-timestep values of the collection at p.
	GetRegion(ctx context.Context, c Collection, p Point, scale float64) (RawRegionResult, error)
	// TileURL publishes img with vis and returns its tile URL template.
	TileURL(ctx context.Context, img Image, vis VisParams) (string, error)
}

// VisParams are the rendering parameters for a published image.
type VisParams struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Palette []string `json:"palette"`
	Opacity float64  `json:"opacity"`
}

// Subsetter narrows collections to a band spec and a time window and extracts
// point time series from them.
type Subsetter struct {
	spec      BandSpec
	source    Source
	window    TimeWindow
	converter UnitConverter
}

// NewSubsetter builds a subsetter whose window ends five days before today and
// spans numDays days.
func NewSubsetter(spec BandSpec, source Source, numDays int, today time.Time) (*Subsetter, error) {
	if len(spec) == 0 {
		return nil, fmt.Errorf("subsetter needs a non-empty band spec")
	}
	w, err := NewTimeWindow(today, numDays)
	if err != nil {
		return nil, err
	}
	return NewSubsetterWithWindow(spec, source, w), nil
}

// NewSubsetterWithWindow builds a subsetter over an explicit window.
func NewSubsetterWithWindow(spec BandSpec, source Source, w TimeWindow) *Subsetter {
	return &Subsetter{
		spec:      spec,
		source:    source,
		window:    w,
		converter: NewUnitConverter(spec),
	}
}

func (s *Subsetter) Spec() BandSpec     { return s.spec }
func (s *Subsetter) Source() Source     { return s.source }
func (s *Subsetter) Window() TimeWindow { return s.window }

// SubsetCollection selects exactly the BandSpec bands, in BandSpec order, and
// restricts c to the window. No data is fetched.
func (s *Subsetter) SubsetCollection(c Collection) (Collection, error) {
	selected, err := c.Select(s.spec.Bands()...)
	if err != nil {
		return Collection{}, err
	}
	return selected.FilterDate(s.window.Start, s.window.End), nil
}

// PointSeries extracts the unit-converted time series of every spec band at
// (lat, lon). Coordinates are passed to the backend unchecked.
func (s *Subsetter) PointSeries(ctx context.Context, b Backend, c Collection, lat, lon float64) (Table, error) {
	poi := NewPoint(lon, lat)

	subset, err := s.SubsetCollection(c)
	if err != nil {
		return Table{}, err
	}

	raw, err := b.GetRegion(ctx, subset, poi, RegionScale)
	if err != nil {
		return Table{}, err
	}

	table, err := BuildTable(raw, s.spec.Bands(), s.source)
	if err != nil {
		return Table{}, err
	}

	return s.converter.Apply(table)
}
