package aggregator

import (
	"math"

	"canestats/internal/core"
)

// Default months compared side by side.
const (
	DefaultBaseMonth   = "ऑगस्ट २०२४"
	DefaultTargetMonth = "ऑगस्ट २०२५"
)

// ComparisonRow holds one metric for the base and target month.
type ComparisonRow struct {
	Metric string  `json:"metric"`
	Base   float64 `json:"base"`
	Target float64 `json:"target"`
}

// Comparison contrasts two months over the hierarchical scope.
type Comparison struct {
	BaseMonth   string          `json:"base_month"`
	TargetMonth string          `json:"target_month"`
	Rows        []ComparisonRow `json:"rows"`
}

// Compare restricts records by division, district and taluka (year and month
// filters do not apply) and contrasts rate means and rounded totals between
// the base and target month.
func Compare(ds *core.Dataset, f core.FilterState, baseMonth, targetMonth string) Comparison {
	scoped := filterRecords(ds.Records(), func(rec core.TalukaRecord) bool {
		if f.Division() != "" && rec.Division != f.Division() {
			return false
		}
		if f.District() != "" && rec.District != f.District() {
			return false
		}
		if f.Taluka() != "" && rec.Taluka != f.Taluka() {
			return false
		}
		return true
	})
	inMonth := func(month string) []core.TalukaRecord {
		return filterRecords(scoped, func(rec core.TalukaRecord) bool { return rec.Month == month })
	}
	base, target := inMonth(baseMonth), inMonth(targetMonth)

	production := func(r core.TalukaRecord) core.Number { return r.ProductionTons }
	estimated := func(r core.TalukaRecord) core.Number { return r.EstimatedAreaHa }

	return Comparison{
		BaseMonth:   baseMonth,
		TargetMonth: targetMonth,
		Rows: []ComparisonRow{
			{Metric: string(Productivity), Base: positiveMean(base, Productivity), Target: positiveMean(target, Productivity)},
			{Metric: string(SoilMoisture), Base: positiveMean(base, SoilMoisture), Target: positiveMean(target, SoilMoisture)},
			{Metric: string(SugarRecovery), Base: positiveMean(base, SugarRecovery), Target: positiveMean(target, SugarRecovery)},
			{Metric: "production_tons", Base: math.Round(sum(base, production)), Target: math.Round(sum(target, production))},
			{Metric: "estimated_area_ha", Base: math.Round(sum(base, estimated)), Target: math.Round(sum(target, estimated))},
		},
	}
}

// positiveMean averages strictly positive values only, whatever their source
// type.
func positiveMean(records []core.TalukaRecord, field RateField) float64 {
	var total float64
	var n int
	for _, rec := range records {
		if v, ok := field.Of(rec).Positive(); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
