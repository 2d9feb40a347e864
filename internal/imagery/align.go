package imagery

// Align merges two canonical tables into one long-format table.
//
// Table a is the anchor: its datetimes are kept as-is and every one of its rows
// survives. Table b's datetimes are rounded to a's resolution when b is
// finer-grained, then b is left-joined onto a; the first b row wins when
// several round to the same key. Joined band columns are renamed through
// renames and the valueVars columns are melted into (datetime, labelName,
// value) rows, one block per value var.
func Align(a, b Table, renames map[string]string, valueVars []string, labelName string) (AlignedSeriesTable, error) {
	right := make(map[int64]int, len(b.Rows))
	for i, r := range b.Rows {
		k := alignKey(r.Datetime, b.Source, a.Source)
		if _, seen := right[k]; !seen {
			right[k] = i
		}
	}

	matches := make([]int, len(a.Rows))
	matched := 0
	for i, r := range a.Rows {
		j, ok := right[r.Datetime.Time.UnixNano()]
		if !ok {
			matches[i] = -1
			continue
		}
		matches[i] = j
		matched++
	}
	if len(a.Rows) > 0 && matched == 0 {
		return AlignedSeriesTable{}, &AlignmentError{LeftRows: len(a.Rows), RightRows: len(b.Rows)}
	}

	type column struct {
		left bool
		idx  int
	}
	columns := make(map[string]column, len(a.Bands)+len(b.Bands))
	for i, band := range b.Bands {
		columns[renamed(band, renames)] = column{idx: i}
	}
	for i, band := range a.Bands {
		columns[renamed(band, renames)] = column{left: true, idx: i}
	}

	out := AlignedSeriesTable{
		LabelName: labelName,
		Rows:      make([]SeriesPoint, 0, len(valueVars)*len(a.Rows)),
	}
	for _, v := range valueVars {
		col, ok := columns[v]
		if !ok {
			return AlignedSeriesTable{}, &UnknownBandError{Band: v}
		}
		for i, r := range a.Rows {
			var cell Value
			switch {
			case col.left:
				cell = r.Values[col.idx]
			case matches[i] >= 0:
				cell = b.Rows[matches[i]].Values[col.idx]
			}
			if cell != nil {
				cell = Float(*cell)
			}
			out.Rows = append(out.Rows, SeriesPoint{
				Datetime: r.Datetime,
				Label:    v,
				Value:    cell,
			})
		}
	}

	return out, nil
}

func alignKey(d Datetime, from, to Source) int64 {
	t := d.Time
	if res := to.Resolution(); from.Resolution() < res {
		t = t.Round(res)
	}
	return t.UnixNano()
}

func renamed(band string, renames map[string]string) string {
	if to, ok := renames[band]; ok {
		return to
	}
	return band
}
