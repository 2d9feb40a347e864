package dashboard

import "github.com/i474232898/no2-dashboard/internal/imagery"

// SummarizeSeries computes count, mean, min and max over the present values of
// each label. Missing values are skipped; a label with no values has nil stats.
func SummarizeSeries(table imagery.AlignedSeriesTable, labels []string) []SeriesStats {
	out := make([]SeriesStats, 0, len(labels))

	for _, label := range labels {
		st := SeriesStats{Label: label}
		var sum, lo, hi float64

		for _, p := range table.Series(label) {
			if p.Value == nil {
				continue
			}
			v := *p.Value
			if st.Count == 0 || v < lo {
				lo = v
			}
			if st.Count == 0 || v > hi {
				hi = v
			}
			sum += v
			st.Count++
		}

		if st.Count > 0 {
			mean := sum / float64(st.Count)
			st.Mean, st.Min, st.Max = &mean, &lo, &hi
		}
		out = append(out, st)
	}

	return out
}
