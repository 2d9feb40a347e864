package imagery

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

type fakeBackend struct {
	raw    RawRegionResult
	err    error
	calls  int
	gotC   Collection
	gotP   Point
	gotRes float64
}

func (f *fakeBackend) Describe(_ context.Context, id string) (Collection, error) {
	return NewCollection(id, nil), nil
}

func (f *fakeBackend) GetRegion(_ context.Context, c Collection, p Point, scale float64) (RawRegionResult, error) {
	f.calls++
	f.gotC, f.gotP, f.gotRes = c, p, scale
	return f.raw, f.err
}

func (f *fakeBackend) TileURL(context.Context, Image, VisParams) (string, error) {
	return "", nil
}

var testToday = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

func chemSubsetter(t *testing.T) *Subsetter {
	t.Helper()
	spec := MustBandSpec(BandScale{"TROPCOL_NO2", 1e4 * 1e15 / 6.02e23}, BandScale{"NO2", 1e9})
	s, err := NewSubsetter(spec, ModelSource, 10, testToday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestSubsetCollectionSelectsSpecBands(t *testing.T) {
	s := chemSubsetter(t)
	coll := NewCollection("geos", []string{"O3", "NO2", "T10M", "TROPCOL_NO2", "RH"})

	sub, err := s.SubsetCollection(coll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(sub.Bands(), []string{"TROPCOL_NO2", "NO2"}) {
		t.Fatalf("expected spec bands in spec order, got %v", sub.Bands())
	}
	w, ok := sub.Window()
	if !ok || w != s.Window() {
		t.Fatalf("expected window %s, got %s", s.Window(), w)
	}
}

func TestSubsetCollectionBandNotFound(t *testing.T) {
	s := chemSubsetter(t)
	coll := NewCollection("geos", []string{"NO2"})

	sub, err := s.SubsetCollection(coll)
	var notFound *BandNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected BandNotFoundError, got %v", err)
	}
	if _, ok := sub.Window(); ok || sub.ID() != "" {
		t.Fatalf("expected no partial collection, got %+v", sub)
	}
	if len(coll.Bands()) != 1 {
		t.Fatalf("input collection was modified")
	}
}

func TestPointSeries(t *testing.T) {
	s := chemSubsetter(t)
	backend := &fakeBackend{raw: RawRegionResult{
		{"id", "longitude", "latitude", "time", "NO2", "TROPCOL_NO2"},
		{"0", -77.02, 38.97, 1790000000000.0, 2.5e-8, 5.0},
		{"1", -77.02, 38.97, 1790003600000.0, nil, 6.0},
		{"2", -77.02, 38.97, 1790007200000.0, 1e-8, "x"},
	}}
	coll := NewCollection("geos", []string{"NO2", "TROPCOL_NO2", "O3"})

	table, err := s.PointSeries(context.Background(), backend, coll, 38.97, -77.02)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if backend.calls != 1 {
		t.Fatalf("expected one backend call, got %d", backend.calls)
	}
	if backend.gotP != (Point{Lon: -77.02, Lat: 38.97}) {
		t.Fatalf("unexpected point %+v", backend.gotP)
	}
	if backend.gotRes != RegionScale {
		t.Fatalf("expected scale %d, got %v", RegionScale, backend.gotRes)
	}
	if !reflect.DeepEqual(backend.gotC.Bands(), []string{"TROPCOL_NO2", "NO2"}) {
		t.Fatalf("backend saw bands %v", backend.gotC.Bands())
	}

	if !reflect.DeepEqual(table.Bands, []string{"TROPCOL_NO2", "NO2"}) {
		t.Fatalf("unexpected columns %v", table.Bands)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	wantCol := 5.0 * 1e4 * 1e15 / 6.02e23
	if got := *table.Rows[0].Values[0]; math.Abs(got-wantCol) > 1e-15 {
		t.Fatalf("expected TROPCOL_NO2 %v, got %v", wantCol, got)
	}
	if got := *table.Rows[0].Values[1]; math.Abs(got-25) > 1e-9 {
		t.Fatalf("expected NO2 25, got %v", got)
	}
	if table.Rows[1].Values[0] != nil {
		t.Fatalf("expected coerced TROPCOL_NO2 to be missing")
	}
}

func TestPointSeriesBackendError(t *testing.T) {
	s := chemSubsetter(t)
	backend := &fakeBackend{err: &BackendUnavailableError{Op: "region", Err: errors.New("connection refused")}}
	coll := NewCollection("geos", []string{"NO2", "TROPCOL_NO2"})

	_, err := s.PointSeries(context.Background(), backend, coll, 100, 500)
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
	if backend.gotP != (Point{Lon: 500, Lat: 100}) {
		t.Fatalf("coordinates should reach the backend unchecked, got %+v", backend.gotP)
	}
}

func TestPointSeriesSkipsBackendOnMissingBand(t *testing.T) {
	s := chemSubsetter(t)
	backend := &fakeBackend{}

	_, err := s.PointSeries(context.Background(), backend, NewCollection("geos", []string{"NO2"}), 0, 0)
	var notFound *BandNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected BandNotFoundError, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend should not be called, got %d calls", backend.calls)
	}
}
