package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// Imagery backend.
	BackendURL          string
	BackendAPIKey       string
	BackendMaxRetries   int
	BackendRetryInitial time.Duration
	ModelCollection     string
	SatelliteCollection string

	// NumDays is the length of the dashboard window.
	NumDays int
	Default dashboard.Location

	// Series cache.
	StoreDriver     string // "memory" or "sqlite"
	StorePath       string
	StoreMaxEntries int           // 0 = unlimited
	StoreMaxAge     time.Duration // 0 = unlimited

	// WarmInterval controls how often cached series are refreshed.
	WarmInterval  time.Duration
	WarmLocations []dashboard.Location

	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	cfg.BackendURL = os.Getenv("BACKEND_URL")
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	cfg.BackendAPIKey = os.Getenv("BACKEND_API_KEY")
	if cfg.BackendMaxRetries, err = getenvInt("BACKEND_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.BackendMaxRetries < 0 {
		return nil, fmt.Errorf("invalid BACKEND_MAX_RETRIES: must not be negative")
	}
	if cfg.BackendRetryInitial, err = getenvDuration("BACKEND_RETRY_INTERVAL", "500ms"); err != nil {
		return nil, err
	}
	cfg.ModelCollection = getenvDefault("MODEL_COLLECTION", dashboard.DefaultModelCollection)
	cfg.SatelliteCollection = getenvDefault("SATELLITE_COLLECTION", dashboard.DefaultSatelliteCollection)

	if cfg.NumDays, err = getenvInt("NUM_DAYS", 10); err != nil {
		return nil, err
	}
	if cfg.NumDays <= 0 {
		return nil, fmt.Errorf("invalid NUM_DAYS: must be greater than zero")
	}
	if cfg.Default.Lat, err = getenvFloat("DEFAULT_LAT", 38.97); err != nil {
		return nil, err
	}
	if cfg.Default.Lon, err = getenvFloat("DEFAULT_LON", -77.02); err != nil {
		return nil, err
	}

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", "memory"))
	if cfg.StoreDriver != "memory" && cfg.StoreDriver != "sqlite" {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: use memory or sqlite", cfg.StoreDriver)
	}
	cfg.StorePath = getenvDefault("STORE_PATH", "data/series.db")
	if cfg.StoreMaxEntries, err = getenvInt("STORE_MAX_HISTORY", 256); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "60m"); err != nil {
		return nil, err
	}
	// Warmed entries must outlive the interval between warm-up runs.
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", (2 * cfg.WarmInterval).String()); err != nil {
		return nil, err
	}
	locs, err := parseLocations(os.Getenv("WARM_LOCATIONS"))
	if err != nil {
		return nil, err
	}
	cfg.WarmLocations = append([]dashboard.Location{cfg.Default}, locs...)

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	return cfg, nil
}

// parseLocations reads "lat:lon,lat:lon".
func parseLocations(s string) ([]dashboard.Location, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var locs []dashboard.Location
	for _, item := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid WARM_LOCATIONS entry %q: want lat:lon", item)
		}
		lat, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WARM_LOCATIONS latitude %q: %w", parts[0], err)
		}
		lon, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WARM_LOCATIONS longitude %q: %w", parts[1], err)
		}
		locs = append(locs, dashboard.Location{Lat: lat, Lon: lon})
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
