package aggregator

import "canestats/internal/core"

// Slice is one named value of a pie or single-series chart.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PieView projects the group-by aggregate onto name/total-area pairs.
func PieView(f core.FilterState, eligible []core.TalukaRecord) []Slice {
	groups := GroupBy(f, eligible)
	out := make([]Slice, 0, len(groups))
	for _, g := range groups {
		out = append(out, Slice{Name: g.Name, Value: g.TotalArea})
	}
	return out
}

// BarRow is one stacked bar.
type BarRow struct {
	Name        string  `json:"name"`
	SuruHa      float64 `json:"suru_ha"`
	RatoonHa    float64 `json:"ratoon_ha"`
	AdsaliHa    float64 `json:"adsali_ha"`
	PreSeasonHa float64 `json:"pre_season_ha"`
}

// BarView projects the group-by aggregate onto stacked bars. With a taluka
// selected it emits one bar per seasonal metric instead, each carrying only
// its own metric. No placeholder is substituted: an empty eligible set gives
// no bars.
func BarView(f core.FilterState, eligible []core.TalukaRecord) []BarRow {
	out := []BarRow{}
	if len(eligible) == 0 {
		return out
	}
	if f.Taluka() != "" {
		g := groupRecords(eligible, ByTaluka)[0]
		return append(out,
			BarRow{Name: string(MetricSuru), SuruHa: g.SuruHa},
			BarRow{Name: string(MetricRatoon), RatoonHa: g.RatoonHa},
			BarRow{Name: string(MetricAdsali), AdsaliHa: g.AdsaliHa},
			BarRow{Name: string(MetricPreSeason), PreSeasonHa: g.PreSeasonHa},
		)
	}
	for _, g := range sortedGroups(eligible, GroupDimension(f)) {
		out = append(out, BarRow{
			Name:        g.Name,
			SuruHa:      g.SuruHa,
			RatoonHa:    g.RatoonHa,
			AdsaliHa:    g.AdsaliHa,
			PreSeasonHa: g.PreSeasonHa,
		})
	}
	return out
}

// MetricSeries is the single-series view of one seasonal metric.
type MetricSeries struct {
	Metric Metric  `json:"metric"`
	Points []Slice `json:"points"`
	// NoData tells the caller to render an explicit "no data for this
	// metric" state instead of an empty chart.
	NoData bool `json:"no_data"`
}

// MetricView groups like GroupBy but keeps a single metric, in first-seen
// order, dropping groups whose value is not positive.
func MetricView(f core.FilterState, eligible []core.TalukaRecord, m Metric) MetricSeries {
	series := MetricSeries{Metric: m, Points: []Slice{}}
	for _, g := range groupRecords(eligible, GroupDimension(f)) {
		if v := g.Metric(m); v > 0 {
			series.Points = append(series.Points, Slice{Name: g.Name, Value: v})
		}
	}
	series.NoData = len(series.Points) == 0
	return series
}
