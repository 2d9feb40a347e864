package dashboard

import (
	"time"

	"github.com/i474232898/no2-dashboard/internal/imagery"
)

// Location is a clicked or configured map coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TileLayer is one map overlay handed to the presentation layer.
type TileLayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	Base        bool   `json:"base,omitempty"`
	MaxZoom     int    `json:"maxZoom,omitempty"`
}

// MapView is the result of a date selection.
type MapView struct {
	Date   string      `json:"date"`
	Status string      `json:"status"`
	Layers []TileLayer `json:"layers"`
}

// WindowInfo describes the selectable date range.
type WindowInfo struct {
	Start       string   `json:"start"`
	End         string   `json:"end"` // exclusive
	NumDays     int      `json:"numDays"`
	DefaultDate string   `json:"defaultDate"`
	Default     Location `json:"defaultLocation"`
}

// SeriesStats summarizes the present values of one series.
type SeriesStats struct {
	Label string   `json:"label"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// SeriesResult is the aligned two-source NO2 series at a location.
type SeriesResult struct {
	Location  Location                   `json:"location"`
	Window    string                     `json:"window"`
	Title     string                     `json:"title"`
	YAxis     string                     `json:"yAxis"`
	Table     imagery.AlignedSeriesTable `json:"table"`
	Stats     []SeriesStats              `json:"stats"`
	FetchedAt time.Time                  `json:"fetchedAt"`
}

// MeteorologyResult is the meteorology table at a location.
type MeteorologyResult struct {
	Location Location      `json:"location"`
	Window   string        `json:"window"`
	Table    imagery.Table `json:"table"`
}
