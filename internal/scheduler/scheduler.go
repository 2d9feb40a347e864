package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

// Warmer refreshes the cached series of a location.
type Warmer interface {
	Refresh(ctx context.Context, loc dashboard.Location) (dashboard.SeriesResult, error)
}

// Scheduler periodically refreshes the series cache for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	locations []dashboard.Location
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(locations []dashboard.Location, interval time.Duration, warmer Warmer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		warmer:    warmer,
		locations: locations,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.runJob); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runJob() {
	log.Println("scheduler: running series warm-up job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if _, err := s.warmer.Refresh(ctx, loc); err != nil {
				log.Printf("scheduler: warm-up failed for %.3f, %.3f: %v", loc.Lat, loc.Lon, err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed series warm-up job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
