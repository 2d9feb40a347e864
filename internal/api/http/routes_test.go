package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
	"github.com/i474232898/no2-dashboard/internal/imagery"
	"github.com/i474232898/no2-dashboard/internal/store"
)

type stubBackend struct {
	satellite imagery.RawRegionResult
	fail      error
}

func (s *stubBackend) Describe(_ context.Context, id string) (imagery.Collection, error) {
	if id == dashboard.DefaultSatelliteCollection {
		return imagery.NewCollection(id, dashboard.SatelliteBands.Bands()), nil
	}
	bands := append(dashboard.ChemistryBands.Bands(), dashboard.MeteorologyBands.Bands()...)
	return imagery.NewCollection(id, bands), nil
}

func (s *stubBackend) GetRegion(_ context.Context, c imagery.Collection, _ imagery.Point, _ float64) (imagery.RawRegionResult, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	ts := float64(time.Date(2026, 10, 5, 18, 0, 0, 0, time.UTC).UnixMilli())
	if c.ID() == dashboard.DefaultSatelliteCollection {
		return s.satellite, nil
	}
	header := []any{"id", "longitude", "latitude", "time"}
	row := []any{"0", 0.0, 0.0, ts}
	for _, b := range c.Bands() {
		header = append(header, b)
		row = append(row, 1.0)
	}
	return imagery.RawRegionResult{header, row}, nil
}

func (s *stubBackend) TileURL(_ context.Context, img imagery.Image, _ imagery.VisParams) (string, error) {
	return "https://tiles.example/" + img.Collection.ID(), nil
}

func satelliteAt(t time.Time) imagery.RawRegionResult {
	return imagery.RawRegionResult{
		{"id", "longitude", "latitude", "time", dashboard.SatTropNO2},
		{"0", 0.0, 0.0, float64(t.UnixMilli()), 5e-5},
	}
}

func newTestApp(t *testing.T, backend *stubBackend) *fiber.App {
	t.Helper()
	svc, err := dashboard.NewService(context.Background(), backend, store.NewMemoryStore(10, time.Hour), nil, dashboard.Options{
		NumDays: 10,
		Default: dashboard.Location{Lat: 38.97, Lon: -77.02},
		Today:   time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app := fiber.New()
	RegisterRoutes(app, svc)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(body, &out)
	return resp, out
}

func TestWindowEndpoint(t *testing.T) {
	app := newTestApp(t, &stubBackend{})

	resp, body := get(t, app, "/api/v1/window")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body["defaultDate"] != "2026-10-07" {
		t.Fatalf("unexpected body %v", body)
	}
}

// TestMapDateValidation verifies that the map endpoint rejects malformed and
// out-of-window dates.
func TestMapDateValidation(t *testing.T) {
	app := newTestApp(t, &stubBackend{})

	for _, target := range []string{"/api/v1/map?date=10/07/2026", "/api/v1/map?date=2026-09-01"} {
		resp, _ := get(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}

	resp, body := get(t, app, "/api/v1/map?date=2026-10-03")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body["status"] != "Map of Mean Tropospheric NO2 for: October 03, 2026" {
		t.Fatalf("unexpected status %v", body["status"])
	}
}

func TestSeriesEndpoint(t *testing.T) {
	app := newTestApp(t, &stubBackend{satellite: satelliteAt(time.Date(2026, 10, 5, 17, 45, 0, 0, time.UTC))})

	resp, body := get(t, app, "/api/v1/series?lat=38.97&lon=-77.02")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	table, _ := body["table"].(map[string]any)
	records, _ := table["records"].([]any)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %v", table)
	}
}

func TestSeriesQueryValidation(t *testing.T) {
	app := newTestApp(t, &stubBackend{})

	for _, target := range []string{
		"/api/v1/series?lat=38.97",
		"/api/v1/series?lat=north&lon=1",
		"/api/v1/series?city=Paris",
		"/api/v1/series?city=Paris&country=FR",
		"/api/v1/series/meteorology?city=Paris&country=FR",
	} {
		resp, _ := get(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestSeriesErrorMapping(t *testing.T) {
	noOverlap := &stubBackend{satellite: satelliteAt(time.Date(2026, 10, 8, 3, 0, 0, 0, time.UTC))}
	resp, _ := get(t, newTestApp(t, noOverlap), "/api/v1/series")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	down := &stubBackend{fail: &imagery.BackendUnavailableError{Op: "region", Err: errors.New("refused")}}
	resp, _ = get(t, newTestApp(t, down), "/api/v1/series?lat=1&lon=2")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}

	malformed := &stubBackend{satellite: imagery.RawRegionResult{{"time"}}}
	resp, _ = get(t, newTestApp(t, malformed), "/api/v1/series?lat=1&lon=2")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestMeteorologyEndpoint(t *testing.T) {
	app := newTestApp(t, &stubBackend{})

	resp, body := get(t, app, "/api/v1/series/meteorology?lat=38.97&lon=-77.02")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	table, _ := body["table"].(map[string]any)
	if cols, _ := table["columns"].([]any); len(cols) != 6 {
		t.Fatalf("expected datetime plus 5 meteorology columns, got %v", table["columns"])
	}
}
