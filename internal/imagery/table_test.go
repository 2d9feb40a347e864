package imagery

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAlignedSeriesTableJSON(t *testing.T) {
	ts := time.Date(2026, 10, 5, 18, 0, 0, 0, time.UTC)
	in := AlignedSeriesTable{
		LabelName: "NO2 Value Source",
		Rows: []SeriesPoint{
			{Datetime: Datetime{Time: ts}, Label: "GEOS-CF", Value: Float(4.2e-5)},
			{Datetime: Datetime{Time: ts}, Label: "TROPOMI"},
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"NO2 Value Source":"TROPOMI"`) || !strings.Contains(string(data), `"value":null`) {
		t.Fatalf("unexpected encoding %s", data)
	}

	var out AlignedSeriesTable
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Len() != 2 || out.LabelName != in.LabelName {
		t.Fatalf("unexpected table %+v", out)
	}
	if !out.Rows[0].Datetime.Time.Equal(ts) || out.Rows[0].Value == nil || *out.Rows[0].Value != 4.2e-5 {
		t.Fatalf("unexpected first row %+v", out.Rows[0])
	}
	if out.Rows[1].Value != nil {
		t.Fatalf("missing value should decode as nil")
	}
}

func TestDatetimeTextForm(t *testing.T) {
	var d Datetime
	if err := json.Unmarshal([]byte(`"2026-10-01 18:42"`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsText() || d.Time.Minute() != 42 {
		t.Fatalf("unexpected datetime %+v", d)
	}
}

func TestTableColumn(t *testing.T) {
	col, err := sampleTable().Column("O3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col) != 2 || *col[1] != 2 {
		t.Fatalf("unexpected column %v", col)
	}

	data, err := json.Marshal(sampleTable())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"columns":["datetime","NO2","O3"]`) {
		t.Fatalf("unexpected encoding %s", data)
	}
}
