package imagery

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var coreColumns = []string{ColumnLongitude, ColumnLatitude, ColumnTime}

// maxEpochMillis bounds time cells to integers a float64 holds exactly.
const maxEpochMillis = 1 << 53

// BuildTable turns a raw region result into a canonical table with columns
// datetime followed by bands.
//
// Records missing any core or band cell are dropped; band cells that are not
// numbers become missing values. Satellite timestamps are rendered as
// minute-precision text, model timestamps keep millisecond precision.
func BuildTable(raw RawRegionResult, bands []string, source Source) (Table, error) {
	if len(raw) == 0 {
		return Table{}, &SchemaError{Detail: "empty region result, no header row"}
	}

	header := make(map[string]int, len(raw[0]))
	for i, cell := range raw[0] {
		name, ok := cell.(string)
		if !ok {
			name = fmt.Sprint(cell)
		}
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}

	var missing []string
	for _, c := range coreColumns {
		if _, ok := header[c]; !ok {
			missing = append(missing, c)
		}
	}
	for _, b := range bands {
		if _, ok := header[b]; !ok {
			missing = append(missing, b)
		}
	}
	if len(missing) > 0 {
		return Table{}, &SchemaError{Missing: missing}
	}

	wanted := make([]int, 0, len(coreColumns)+len(bands))
	for _, c := range coreColumns {
		wanted = append(wanted, header[c])
	}
	for _, b := range bands {
		wanted = append(wanted, header[b])
	}

	table := Table{
		Source: source,
		Bands:  append([]string(nil), bands...),
		Rows:   make([]Row, 0, len(raw)-1),
	}

	for n, record := range raw[1:] {
		if hasMissing(record, wanted) {
			continue
		}

		ms, ok := toFloat(record[header[ColumnTime]])
		if !ok {
			return Table{}, &SchemaError{Detail: fmt.Sprintf("row %d: time value %v is not an epoch-millisecond number", n+1, record[header[ColumnTime]])}
		}
		if math.Abs(ms) > maxEpochMillis {
			return Table{}, &SchemaError{Detail: fmt.Sprintf("row %d: time value %v is out of range", n+1, record[header[ColumnTime]])}
		}

		values := make([]Value, len(bands))
		for i, b := range bands {
			if f, ok := toFloat(record[header[b]]); ok {
				values[i] = Float(f)
			}
		}

		table.Rows = append(table.Rows, Row{
			Datetime: epochDatetime(ms, source),
			Values:   values,
		})
	}

	return table, nil
}

func epochDatetime(ms float64, source Source) Datetime {
	t := time.UnixMilli(int64(math.Round(ms))).UTC()
	if source == SatelliteSource {
		t = t.Truncate(time.Minute)
		return Datetime{Time: t, Text: t.Format(minuteLayout)}
	}
	return Datetime{Time: t}
}

func hasMissing(record []any, cols []int) bool {
	for _, i := range cols {
		if i >= len(record) || record[i] == nil {
			return true
		}
		if f, ok := record[i].(float64); ok && math.IsNaN(f) {
			return true
		}
	}
	return false
}

// toFloat coerces a cell to a number; anything unparseable reports false.
func toFloat(cell any) (float64, bool) {
	var f float64
	switch v := cell.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
