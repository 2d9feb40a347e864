package imagery

// Convert returns a copy of t with every present value of band multiplied by
// factor. Missing values stay missing.
func Convert(t Table, band string, factor float64) (Table, error) {
	idx, ok := t.BandIndex(band)
	if !ok {
		return Table{}, &UnknownBandError{Band: band}
	}
	out := t.clone()
	for _, r := range out.Rows {
		if v := r.Values[idx]; v != nil {
			*v *= factor
		}
	}
	return out, nil
}

// UnitConverter applies a BandSpec's scale factors to tables.
type UnitConverter struct {
	spec BandSpec
}

func NewUnitConverter(spec BandSpec) UnitConverter {
	return UnitConverter{spec: spec}
}

// Apply converts every band of the BandSpec in declaration order.
func (u UnitConverter) Apply(t Table) (Table, error) {
	var err error
	for _, p := range u.spec {
		if t, err = Convert(t, p.Band, p.Scale); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}
