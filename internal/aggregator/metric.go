// Package aggregator derives every dashboard view from an immutable dataset
// and a FilterState. All functions are pure and synchronous.
package aggregator

import (
	"fmt"

	"canestats/internal/core"
)

// Metric names one of the four seasonal planting-area columns.
type Metric string

const (
	MetricSuru      Metric = "suru_ha"
	MetricRatoon    Metric = "ratoon_ha"
	MetricAdsali    Metric = "adsali_ha"
	MetricPreSeason Metric = "pre_season_ha"
)

// SeasonalMetrics lists the stacked bar metrics in display order.
var SeasonalMetrics = []Metric{MetricSuru, MetricRatoon, MetricAdsali, MetricPreSeason}

// ParseMetric validates a metric name received from a caller.
func ParseMetric(s string) (Metric, error) {
	for _, m := range SeasonalMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Of returns the metric column of a record.
func (m Metric) Of(rec core.TalukaRecord) core.Number {
	switch m {
	case MetricSuru:
		return rec.SuruHa
	case MetricRatoon:
		return rec.RatoonHa
	case MetricAdsali:
		return rec.AdsaliHa
	case MetricPreSeason:
		return rec.PreSeasonHa
	}
	return core.Number{}
}

// RateField names a column holding a percentage or rate. These are averaged,
// never summed.
type RateField string

const (
	SoilMoisture  RateField = "soil_moisture_percent"
	SugarRecovery RateField = "sugar_recovery_percent"
	Productivity  RateField = "productivity_tons_per_ha"
)

// Of returns the rate column of a record.
func (r RateField) Of(rec core.TalukaRecord) core.Number {
	switch r {
	case SoilMoisture:
		return rec.SoilMoisturePercent
	case SugarRecovery:
		return rec.SugarRecoveryPercent
	case Productivity:
		return rec.ProductivityTonsPerHa
	}
	return core.Number{}
}

func sum(records []core.TalukaRecord, field func(core.TalukaRecord) core.Number) float64 {
	var total float64
	for _, rec := range records {
		total += field(rec).Float()
	}
	return total
}
