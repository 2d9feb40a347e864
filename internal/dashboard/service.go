package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/no2-dashboard/internal/common"
	"github.com/i474232898/no2-dashboard/internal/imagery"
)

var (
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
	// ErrDateOutOfRange is returned for dates outside the dashboard window.
	ErrDateOutOfRange = errors.New("date outside of the available window")
	// ErrGeocodingDisabled is returned when a place lookup is requested without a geocoder.
	ErrGeocodingDisabled = errors.New("geocoding is not configured")
	// ErrNotFound is what stores return on a cache miss.
	ErrNotFound = errors.New("no cached series for location")
)

// Store caches aligned series by key.
type Store interface {
	SaveSeries(key string, result SeriesResult) error
	GetLatest(key string) (SeriesResult, error)
}

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, city, country string) (Location, error)
}

// Options configures a Service.
type Options struct {
	ModelCollection     string
	SatelliteCollection string
	NumDays             int
	Default             Location
	Today               time.Time
}

const osmAttribution = "© OpenStreetMap"
const eeAttribution = `Map Data &copy; <a href="https://earthengine.google.com/">Google Earth Engine</a>`

// Service wires the subsetters, the imagery backend and the series cache
// together. Everything but the store is read-only after NewService.
type Service struct {
	backend  imagery.Backend
	store    Store
	geocoder Geocoder

	chemistry   *imagery.Subsetter
	meteorology *imagery.Subsetter
	satellite   *imagery.Subsetter

	modelBase     imagery.Collection
	satelliteBase imagery.Collection
	chemColl      imagery.Collection
	satColl       imagery.Collection

	numDays    int
	defaultLoc Location
}

// NewService describes both backend collections once and precomputes their
// subsets. geocoder may be nil.
func NewService(ctx context.Context, backend imagery.Backend, store Store, geocoder Geocoder, opts Options) (*Service, error) {
	if opts.Today.IsZero() {
		opts.Today = time.Now().UTC()
	}
	if opts.ModelCollection == "" {
		opts.ModelCollection = DefaultModelCollection
	}
	if opts.SatelliteCollection == "" {
		opts.SatelliteCollection = DefaultSatelliteCollection
	}

	window, err := imagery.NewTimeWindow(opts.Today, opts.NumDays)
	if err != nil {
		return nil, err
	}

	s := &Service{
		backend:     backend,
		store:       store,
		geocoder:    geocoder,
		chemistry:   imagery.NewSubsetterWithWindow(ChemistryBands, imagery.ModelSource, window),
		meteorology: imagery.NewSubsetterWithWindow(MeteorologyBands, imagery.ModelSource, window),
		satellite:   imagery.NewSubsetterWithWindow(SatelliteBands, imagery.SatelliteSource, window),
		numDays:     opts.NumDays,
		defaultLoc:  opts.Default,
	}

	if s.modelBase, err = backend.Describe(ctx, opts.ModelCollection); err != nil {
		return nil, fmt.Errorf("describe %s: %w", opts.ModelCollection, err)
	}
	if s.satelliteBase, err = backend.Describe(ctx, opts.SatelliteCollection); err != nil {
		return nil, fmt.Errorf("describe %s: %w", opts.SatelliteCollection, err)
	}
	if s.chemColl, err = s.chemistry.SubsetCollection(s.modelBase); err != nil {
		return nil, err
	}
	if s.satColl, err = s.satellite.SubsetCollection(s.satelliteBase); err != nil {
		return nil, err
	}
	if _, err = s.meteorology.SubsetCollection(s.modelBase); err != nil {
		return nil, err
	}

	log.Printf("INFO: dashboard window %s, default location %.3f, %.3f", window, s.defaultLoc.Lat, s.defaultLoc.Lon)
	return s, nil
}

// Window describes the selectable dates.
func (s *Service) Window() WindowInfo {
	w := s.chemistry.Window()
	return WindowInfo{
		Start:       w.Start.Format(imagery.DateLayout),
		End:         w.End.Format(imagery.DateLayout),
		NumDays:     s.numDays,
		DefaultDate: s.defaultDate().Format(imagery.DateLayout),
		Default:     s.defaultLoc,
	}
}

// DefaultLocation is used when no coordinate was clicked.
func (s *Service) DefaultLocation() Location {
	return s.defaultLoc
}

func (s *Service) defaultDate() time.Time {
	return s.chemistry.Window().Start.AddDate(0, 0, s.numDays/2)
}

// MapView publishes the one-day mean tropospheric NO2 images of both sources
// for date. An empty date selects the default date.
func (s *Service) MapView(ctx context.Context, date string) (MapView, error) {
	day := s.defaultDate()
	if date != "" {
		parsed, err := time.Parse(imagery.DateLayout, date)
		if err != nil {
			return MapView{}, ErrInvalidDate
		}
		day = parsed
	}
	if !s.chemistry.Window().Contains(day) {
		return MapView{}, ErrDateOutOfRange
	}

	dw := imagery.DayWindow(day)
	scale, _ := ChemistryBands.Scale(ModelTropNO2)

	modelColl, err := s.chemColl.Select(ModelTropNO2)
	if err != nil {
		return MapView{}, err
	}
	modelImg := modelColl.FilterDate(dw.Start, dw.End).Mean().Multiply(scale)
	satImg := s.satColl.FilterDate(dw.Start, dw.End).Mean()

	modelURL, err := s.backend.TileURL(ctx, modelImg, TropColumnVis)
	if err != nil {
		return MapView{}, err
	}
	satURL, err := s.backend.TileURL(ctx, satImg, TropColumnVis)
	if err != nil {
		return MapView{}, err
	}

	return MapView{
		Date:   day.Format(imagery.DateLayout),
		Status: "Map of Mean Tropospheric NO2 for: " + day.Format("January 02, 2006"),
		Layers: []TileLayer{
			{ID: "osm", Name: "OSM", URL: "https://tile.openstreetmap.org/{z}/{x}/{y}.png", Attribution: osmAttribution, Base: true, MaxZoom: 19},
			{ID: "GEOS-CF-Tile", Name: ModelLabel, URL: modelURL, Attribution: eeAttribution},
			{ID: SatelliteLabel, Name: SatelliteLabel, URL: satURL, Attribution: eeAttribution},
		},
	}, nil
}

// ResolveLocation geocodes a place name.
func (s *Service) ResolveLocation(ctx context.Context, city, country string) (Location, error) {
	if s.geocoder == nil {
		return Location{}, ErrGeocodingDisabled
	}
	return s.geocoder.Lookup(ctx, city, country)
}

func (s *Service) cacheKey(loc Location) string {
	return s.chemistry.Window().String() + "@" + common.CoordKey(loc.Lat, loc.Lon)
}

// NO2Series returns the aligned model and satellite tropospheric NO2 series at
// loc, served from the store when a fresh entry exists.
func (s *Service) NO2Series(ctx context.Context, loc Location) (SeriesResult, error) {
	key := s.cacheKey(loc)
	if s.store != nil {
		if cached, err := s.store.GetLatest(key); err == nil {
			log.Printf("DEBUG: series cache hit for %s", key)
			// Entries are shared by every location that rounds to the same key.
			cached.Location = loc
			return cached, nil
		} else if !errors.Is(err, ErrNotFound) {
			log.Printf("ERROR: series cache read failed for %s: %v", key, err)
		}
	}
	return s.Refresh(ctx, loc)
}

// Refresh runs the full pipeline for loc and stores the result.
func (s *Service) Refresh(ctx context.Context, loc Location) (SeriesResult, error) {
	model, err := s.chemistry.PointSeries(ctx, s.backend, s.modelBase, loc.Lat, loc.Lon)
	if err != nil {
		return SeriesResult{}, fmt.Errorf("model series: %w", err)
	}
	sat, err := s.satellite.PointSeries(ctx, s.backend, s.satelliteBase, loc.Lat, loc.Lon)
	if err != nil {
		return SeriesResult{}, fmt.Errorf("satellite series: %w", err)
	}

	aligned, err := imagery.Align(model, sat, seriesRenames, seriesValueVars, SeriesLabel)
	if err != nil {
		return SeriesResult{}, err
	}

	result := SeriesResult{
		Location:  loc,
		Window:    s.chemistry.Window().String(),
		Title:     fmt.Sprintf("Tropospheric NO2 Timeseries for %.3f, %.3f", loc.Lat, loc.Lon),
		YAxis:     "Tropospheric NO2 (mol/m^2)",
		Table:     aligned,
		Stats:     SummarizeSeries(aligned, seriesValueVars),
		FetchedAt: time.Now().UTC(),
	}

	if s.store != nil {
		key := s.cacheKey(loc)
		if err := s.store.SaveSeries(key, result); err != nil {
			log.Printf("ERROR: series cache write failed for %s: %v", key, err)
		}
	}
	return result, nil
}

// MeteorologySeries returns the meteorology bands at loc.
func (s *Service) MeteorologySeries(ctx context.Context, loc Location) (MeteorologyResult, error) {
	table, err := s.meteorology.PointSeries(ctx, s.backend, s.modelBase, loc.Lat, loc.Lon)
	if err != nil {
		return MeteorologyResult{}, err
	}
	return MeteorologyResult{
		Location: loc,
		Window:   s.meteorology.Window().String(),
		Table:    table,
	}, nil
}
