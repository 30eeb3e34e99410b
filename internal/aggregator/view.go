package aggregator

import "canestats/internal/core"

// ViewData is everything the presentation layer needs for one filter state.
type ViewData struct {
	Filters  core.FilterState `json:"filters"`
	Options  Options          `json:"options"`
	Eligible int              `json:"eligible_records"`
	KPI      KPI              `json:"kpi"`
	Averages Averages         `json:"averages"`
	Pie      []Slice          `json:"pie"`
	Bar      []BarRow         `json:"bar"`
	Metrics  []MetricSeries   `json:"metrics"`
}

// DeriveView computes every view for f. It is a pure function of its
// arguments, so results may be memoized by f.Key() per dataset.
func DeriveView(ds *core.Dataset, f core.FilterState) ViewData {
	eligible := Eligible(ds, f)
	view := ViewData{
		Filters:  f,
		Options:  OptionsFor(ds, f),
		Eligible: len(eligible),
		KPI:      ComputeKPI(ds, f, eligible),
		Averages: ComputeAverages(eligible),
		Pie:      PieView(f, eligible),
		Bar:      BarView(f, eligible),
		Metrics:  make([]MetricSeries, 0, len(SeasonalMetrics)),
	}
	for _, m := range SeasonalMetrics {
		view.Metrics = append(view.Metrics, MetricView(f, eligible, m))
	}
	return view
}
