package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

type recordingWarmer struct {
	mu   sync.Mutex
	seen []dashboard.Location
}

func (r *recordingWarmer) Refresh(_ context.Context, loc dashboard.Location) (dashboard.SeriesResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, loc)
	if loc.Lat < 0 {
		return dashboard.SeriesResult{}, errors.New("backend down")
	}
	return dashboard.SeriesResult{Location: loc}, nil
}

func TestRunJobWarmsEveryLocation(t *testing.T) {
	w := &recordingWarmer{}
	locs := []dashboard.Location{{Lat: 38.97, Lon: -77.02}, {Lat: -33.9, Lon: 18.4}, {Lat: 51.5, Lon: -0.1}}
	s := New(locs, time.Hour, w)

	s.runJob()

	if len(w.seen) != len(locs) {
		t.Fatalf("expected %d refreshes, got %d", len(locs), len(w.seen))
	}
}

func TestStartWithoutLocations(t *testing.T) {
	s := New(nil, time.Hour, &recordingWarmer{})
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}

func TestStartRunsImmediately(t *testing.T) {
	w := &recordingWarmer{}
	s := New([]dashboard.Location{{Lat: 1, Lon: 2}}, time.Hour, w)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		n := len(w.seen)
		w.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected the first warm-up to run on start")
}
