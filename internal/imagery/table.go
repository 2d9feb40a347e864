package imagery

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawRegionResult is the array-of-rows answer of a point/region extraction.
// Row 0 is the header; later rows hold numbers, strings or nil in header order.
type RawRegionResult [][]any

// Core column names of a region result header.
const (
	ColumnLongitude = "longitude"
	ColumnLatitude  = "latitude"
	ColumnTime      = "time"
	ColumnDatetime  = "datetime"
)

// minuteLayout renders satellite timestamps.
const minuteLayout = "2006-01-02 15:04"

// Datetime is the key column of a canonical table. Satellite tables carry a
// minute-precision formatted Text; model tables carry only the Time value.
type Datetime struct {
	Time time.Time
	Text string
}

// ParseDatetime reads a minute-precision formatted datetime.
func ParseDatetime(text string) (Datetime, error) {
	t, err := time.ParseInLocation(minuteLayout, text, time.UTC)
	if err != nil {
		return Datetime{}, err
	}
	return Datetime{Time: t, Text: text}, nil
}

// IsText reports whether the datetime is in its formatted-string form.
func (d Datetime) IsText() bool { return d.Text != "" }

func (d Datetime) String() string {
	if d.Text != "" {
		return d.Text
	}
	return d.Time.Format("2006-01-02T15:04:05.000Z07:00")
}

func (d Datetime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Datetime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, err := ParseDatetime(s); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("datetime %q: %w", s, err)
	}
	*d = Datetime{Time: t.UTC()}
	return nil
}

// Value is a numeric cell; nil marks a missing value.
type Value = *float64

// Float returns a Value holding f.
func Float(f float64) Value { return &f }

// Row is one observation: a datetime plus one value per band, in table band order.
type Row struct {
	Datetime Datetime
	Values   []Value
}

// Table is a canonical time-indexed table: columns datetime then Bands.
type Table struct {
	Source Source
	Bands  []string
	Rows   []Row
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// BandIndex returns the column position of band among the value columns.
func (t Table) BandIndex(band string) (int, bool) {
	for i, b := range t.Bands {
		if b == band {
			return i, true
		}
	}
	return -1, false
}

// Column returns the values of band in row order.
func (t Table) Column(band string) ([]Value, error) {
	idx, ok := t.BandIndex(band)
	if !ok {
		return nil, &UnknownBandError{Band: band}
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out, nil
}

// clone deep-copies rows so derived tables never share cells with their input.
func (t Table) clone() Table {
	out := Table{Source: t.Source, Bands: append([]string(nil), t.Bands...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]Value, len(r.Values))
		for j, v := range r.Values {
			if v != nil {
				vals[j] = Float(*v)
			}
		}
		out.Rows[i] = Row{Datetime: r.Datetime, Values: vals}
	}
	return out
}

// MarshalJSON renders the table as a list of records keyed by column name.
func (t Table) MarshalJSON() ([]byte, error) {
	records := make([]map[string]any, len(t.Rows))
	for i, r := range t.Rows {
		rec := make(map[string]any, len(t.Bands)+1)
		rec[ColumnDatetime] = r.Datetime
		for j, b := range t.Bands {
			rec[b] = r.Values[j]
		}
		records[i] = rec
	}
	return json.Marshal(struct {
		Source  string           `json:"source"`
		Columns []string         `json:"columns"`
		Records []map[string]any `json:"records"`
	}{
		Source:  t.Source.String(),
		Columns: append([]string{ColumnDatetime}, t.Bands...),
		Records: records,
	})
}

// SeriesPoint is one row of a long-format table.
type SeriesPoint struct {
	Datetime Datetime
	Label    string
	Value    Value
}

// AlignedSeriesTable is the long-format (datetime, label, value) table plotted
// as one multi-series chart. LabelName names the label column.
type AlignedSeriesTable struct {
	LabelName string
	Rows      []SeriesPoint
}

// Len returns the number of rows.
func (a AlignedSeriesTable) Len() int { return len(a.Rows) }

// Series returns the points carrying label, in table order.
func (a AlignedSeriesTable) Series(label string) []SeriesPoint {
	var out []SeriesPoint
	for _, p := range a.Rows {
		if p.Label == label {
			out = append(out, p)
		}
	}
	return out
}

func (a AlignedSeriesTable) MarshalJSON() ([]byte, error) {
	records := make([]map[string]any, len(a.Rows))
	for i, p := range a.Rows {
		records[i] = map[string]any{
			ColumnDatetime: p.Datetime,
			a.LabelName:    p.Label,
			"value":        p.Value,
		}
	}
	return json.Marshal(struct {
		LabelName string           `json:"labelName"`
		Records   []map[string]any `json:"records"`
	}{
		LabelName: a.LabelName,
		Records:   records,
	})
}

func (a *AlignedSeriesTable) UnmarshalJSON(data []byte) error {
	var payload struct {
		LabelName string                     `json:"labelName"`
		Records   []map[string]json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	out := AlignedSeriesTable{LabelName: payload.LabelName, Rows: make([]SeriesPoint, 0, len(payload.Records))}
	for i, rec := range payload.Records {
		var p SeriesPoint
		if err := json.Unmarshal(rec[ColumnDatetime], &p.Datetime); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if err := json.Unmarshal(rec[payload.LabelName], &p.Label); err != nil {
			return fmt.Errorf("record %d label: %w", i, err)
		}
		if raw, ok := rec["value"]; ok {
			if err := json.Unmarshal(raw, &p.Value); err != nil {
				return fmt.Errorf("record %d value: %w", i, err)
			}
		}
		out.Rows = append(out.Rows, p)
	}
	*a = out
	return nil
}
