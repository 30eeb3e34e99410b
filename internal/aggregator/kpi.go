package aggregator

import "canestats/internal/core"

// KPI holds the headline totals over the eligible set.
type KPI struct {
	TotalArea      float64 `json:"total_area"`
	TotalDivisions int     `json:"total_divisions"`
	TotalDistricts int     `json:"total_districts"`
	TotalTalukas   int     `json:"total_talukas"`
	Season202526   float64 `json:"season_2025_26"`
	HarvestedArea  float64 `json:"harvested_area"`
	Production     float64 `json:"production_tons"`
}

// ComputeKPI summarises the eligible records for the given filters.
func ComputeKPI(ds *core.Dataset, f core.FilterState, eligible []core.TalukaRecord) KPI {
	kpi := KPI{
		TotalArea:     sum(eligible, func(r core.TalukaRecord) core.Number { return r.TotalAreaHa }),
		Season202526:  sum(eligible, func(r core.TalukaRecord) core.Number { return r.Season202526 }),
		HarvestedArea: sum(eligible, func(r core.TalukaRecord) core.Number { return r.HarvestedAreaHa }),
		Production:    sum(eligible, func(r core.TalukaRecord) core.Number { return r.ProductionTons }),
	}

	kpi.TotalDivisions = len(ds.Divisions())
	if f.Division() != "" {
		kpi.TotalDivisions = 1
	}

	switch {
	case f.District() != "":
		kpi.TotalDistricts = 1
	case f.Division() != "":
		if div, ok := ds.Division(f.Division()); ok {
			kpi.TotalDistricts = len(div.Districts)
		} else {
			kpi.TotalDistricts = ds.DistrictCount()
		}
	default:
		kpi.TotalDistricts = ds.DistrictCount()
	}

	kpi.TotalTalukas = len(eligible)
	if f.Taluka() != "" {
		kpi.TotalTalukas = 1
	}
	return kpi
}

// Averages holds the mean of every rate column over the eligible set.
type Averages struct {
	SoilMoisturePercent   float64 `json:"soil_moisture_percent"`
	SugarRecoveryPercent  float64 `json:"sugar_recovery_percent"`
	ProductivityTonsPerHa float64 `json:"productivity_tons_per_ha"`
}

// Average is the arithmetic mean of field over records whose value counts.
// Records with absent, unparsable, or non-positive textual values are left
// out of both numerator and denominator. No countable record yields 0.
func Average(records []core.TalukaRecord, field RateField) float64 {
	var total float64
	var n int
	for _, rec := range records {
		if v, ok := field.Of(rec).Countable(); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// ComputeAverages averages every rate column.
func ComputeAverages(records []core.TalukaRecord) Averages {
	return Averages{
		SoilMoisturePercent:   Average(records, SoilMoisture),
		SugarRecoveryPercent:  Average(records, SugarRecovery),
		ProductivityTonsPerHa: Average(records, Productivity),
	}
}
