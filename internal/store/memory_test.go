package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)

	for _, k := range []string{"a", "b", "c"} {
		if err := s.SaveSeries(k, dashboard.SeriesResult{Title: k}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := s.GetLatest("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oldest entry to be evicted, got %v", err)
	}
	got, err := s.GetLatest("c")
	if err != nil || got.Title != "c" {
		t.Fatalf("expected c, got %+v, %v", got, err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
}

func TestMemoryStoreResaveRefreshesOrder(t *testing.T) {
	s := NewMemoryStore(2, 0)
	s.SaveSeries("a", dashboard.SeriesResult{})
	s.SaveSeries("b", dashboard.SeriesResult{})
	s.SaveSeries("a", dashboard.SeriesResult{Title: "again"})
	s.SaveSeries("c", dashboard.SeriesResult{})

	if _, err := s.GetLatest("b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected b to be evicted, got %v", err)
	}
	if got, _ := s.GetLatest("a"); got.Title != "again" {
		t.Fatalf("expected refreshed a, got %+v", got)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(0, 30*time.Minute)
	s.now = clock.Now

	s.SaveSeries("old", dashboard.SeriesResult{})
	clock.t = clock.t.Add(20 * time.Minute)
	s.SaveSeries("new", dashboard.SeriesResult{})

	clock.t = clock.t.Add(15 * time.Minute)
	if _, err := s.GetLatest("old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
	if _, err := s.GetLatest("new"); err != nil {
		t.Fatalf("expected fresh entry, got %v", err)
	}

	s.SaveSeries("newest", dashboard.SeriesResult{})
	if s.Len() != 2 {
		t.Fatalf("expected expired entry to be pruned on save, got %d entries", s.Len())
	}
}
