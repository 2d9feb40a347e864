package imagery

import "time"

// Collection is an immutable handle to a backend image collection. Every
// narrowing call returns a new handle; nothing is fetched until a Backend is
// asked for data.
type Collection struct {
	id        string
	available []string
	selected  []string
	window    *TimeWindow
}

// NewCollection describes a backend collection carrying the given bands.
func NewCollection(id string, bands []string) Collection {
	return Collection{id: id, available: append([]string(nil), bands...)}
}

// ID is the backend collection identifier.
func (c Collection) ID() string { return c.id }

// Bands returns the selected bands, or every available band when nothing was
// selected yet.
func (c Collection) Bands() []string {
	if c.selected != nil {
		return append([]string(nil), c.selected...)
	}
	return append([]string(nil), c.available...)
}

// Window returns the date filter, if one was applied.
func (c Collection) Window() (TimeWindow, bool) {
	if c.window == nil {
		return TimeWindow{}, false
	}
	return *c.window, true
}

// Select narrows the collection to bands, in the given order. It fails with a
// BandNotFoundError, returning the zero Collection, if any band is not carried.
func (c Collection) Select(bands ...string) (Collection, error) {
	have := c.Bands()
	index := make(map[string]struct{}, len(have))
	for _, b := range have {
		index[b] = struct{}{}
	}
	for _, b := range bands {
		if _, ok := index[b]; !ok {
			return Collection{}, &BandNotFoundError{Collection: c.id, Band: b}
		}
	}
	out := c
	out.selected = append(make([]string, 0, len(bands)), bands...)
	return out, nil
}

// FilterDate restricts the collection to [start, end). Successive filters intersect.
func (c Collection) FilterDate(start, end time.Time) Collection {
	w := TimeWindow{Start: start, End: end}
	if c.window != nil {
		if c.window.Start.After(w.Start) {
			w.Start = c.window.Start
		}
		if c.window.End.Before(w.End) {
			w.End = c.window.End
		}
	}
	out := c
	out.window = &w
	return out
}

// Mean reduces the collection to its per-pixel mean image.
func (c Collection) Mean() Image {
	return Image{Collection: c, Reducer: "mean", Multiplier: 1}
}

// Image is a reduced collection, optionally scaled.
type Image struct {
	Collection Collection
	Reducer    string
	Multiplier float64
}

// Multiply scales the image by f.
func (i Image) Multiply(f float64) Image {
	i.Multiplier *= f
	return i
}

// Point is a single geographic coordinate.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// NewPoint builds a point geometry; the argument order mirrors (lon, lat) geometry conventions.
func NewPoint(lon, lat float64) Point {
	return Point{Lon: lon, Lat: lat}
}
