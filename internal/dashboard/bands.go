package dashboard

import "github.com/i474232898/no2-dashboard/internal/imagery"

// Default backend collections.
const (
	DefaultModelCollection     = "NASA/GEOS-CF/v1/rpl/tavg1hr"
	DefaultSatelliteCollection = "COPERNICUS/S5P/NRTI/L3_NO2"
)

// Band identifiers.
const (
	ModelSurfaceNO2 = "NO2"                                    // mol mol-1
	ModelTropNO2    = "TROPCOL_NO2"                            // 1.0e15 molec cm-2
	SatTropNO2      = "tropospheric_NO2_column_number_density" // mol m-2
)

// Series labels used in the aligned NO2 plot.
const (
	ModelLabel     = "GEOS-CF"
	SatelliteLabel = "TROPOMI"
	SeriesLabel    = "NO2 Value Source"
)

// avogadro used for molecules-per-cm2 to mol-per-m2 conversion.
const avogadro = 6.02e23

var (
	// ChemistryBands converts mixing ratios to ppbv and the model column to mol m-2.
	ChemistryBands = imagery.MustBandSpec(
		imagery.BandScale{Band: ModelSurfaceNO2, Scale: 1.0e9},
		imagery.BandScale{Band: ModelTropNO2, Scale: 10000 * 1e15 / avogadro},
		imagery.BandScale{Band: "O3", Scale: 1.0e9},
		imagery.BandScale{Band: "NOy", Scale: 1.0e9},
		imagery.BandScale{Band: "PM25_RH35_GCC", Scale: 1},
	)

	MeteorologyBands = imagery.MustBandSpec(
		imagery.BandScale{Band: "T10M", Scale: 1},
		imagery.BandScale{Band: "ZPBL", Scale: 1},
		imagery.BandScale{Band: "U10M", Scale: 1},
		imagery.BandScale{Band: "V10M", Scale: 1},
		imagery.BandScale{Band: "RH", Scale: 1},
	)

	SatelliteBands = imagery.MustBandSpec(
		imagery.BandScale{Band: SatTropNO2, Scale: 1},
	)

	// TropColumnVis renders tropospheric NO2 columns in mol m-2.
	TropColumnVis = imagery.VisParams{
		Min:     1e-6,
		Max:     1e-4,
		Palette: []string{"white", "purple"},
		Opacity: 0.5,
	}

	seriesRenames = map[string]string{
		ModelTropNO2: ModelLabel,
		SatTropNO2:   SatelliteLabel,
	}
	seriesValueVars = []string{ModelLabel, SatelliteLabel}
)
