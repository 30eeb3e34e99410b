package aggregator

import (
	"sort"

	"canestats/internal/core"
)

// Placeholder group names emitted so charts render a no-data state.
const (
	NoDataGroup          = "No Data"
	NoDataAvailableGroup = "No Data Available"
)

// Dimension is the record field a group-by keys on.
type Dimension string

const (
	ByDivision Dimension = "division"
	ByDistrict Dimension = "district"
	ByTaluka   Dimension = "taluka"
)

// GroupDimension is one level coarser than the most specific selection.
// With a taluka selected the grouping degenerates to that single taluka.
func GroupDimension(f core.FilterState) Dimension {
	switch {
	case f.Taluka() != "", f.District() != "":
		return ByTaluka
	case f.Division() != "":
		return ByDistrict
	default:
		return ByDivision
	}
}

func (d Dimension) key(rec core.TalukaRecord) string {
	switch d {
	case ByTaluka:
		return rec.Taluka
	case ByDistrict:
		return rec.District
	default:
		return rec.Division
	}
}

// GroupTotal is one group of the group-by aggregate.
type GroupTotal struct {
	Name        string  `json:"name"`
	TotalArea   float64 `json:"total_area"`
	SuruHa      float64 `json:"suru_ha"`
	RatoonHa    float64 `json:"ratoon_ha"`
	AdsaliHa    float64 `json:"adsali_ha"`
	PreSeasonHa float64 `json:"pre_season_ha"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// Seasonal is the sum of the four seasonal metrics.
func (g GroupTotal) Seasonal() float64 {
	return g.SuruHa + g.RatoonHa + g.AdsaliHa + g.PreSeasonHa
}

// Metric returns the summed value of one seasonal metric.
func (g GroupTotal) Metric(m Metric) float64 {
	switch m {
	case MetricSuru:
		return g.SuruHa
	case MetricRatoon:
		return g.RatoonHa
	case MetricAdsali:
		return g.AdsaliHa
	case MetricPreSeason:
		return g.PreSeasonHa
	}
	return 0
}

// groupRecords sums every group in first-seen key order.
func groupRecords(records []core.TalukaRecord, dim Dimension) []GroupTotal {
	index := map[string]int{}
	var groups []GroupTotal
	for _, rec := range records {
		k := dim.key(rec)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupTotal{Name: k})
		}
		g := &groups[i]
		g.TotalArea += rec.TotalAreaHa.Float()
		g.SuruHa += rec.SuruHa.Float()
		g.RatoonHa += rec.RatoonHa.Float()
		g.AdsaliHa += rec.AdsaliHa.Float()
		g.PreSeasonHa += rec.PreSeasonHa.Float()
	}
	return groups
}

// sortedGroups orders groups by descending seasonal total; ties keep
// first-seen order.
func sortedGroups(records []core.TalukaRecord, dim Dimension) []GroupTotal {
	groups := groupRecords(records, dim)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Seasonal() > groups[j].Seasonal()
	})
	return groups
}

// GroupBy is the aggregate behind the pie and bar views. An empty eligible
// set yields a single "No Data" placeholder; a non-empty set whose groups
// all have zero total area yields "No Data Available".
func GroupBy(f core.FilterState, eligible []core.TalukaRecord) []GroupTotal {
	if len(eligible) == 0 {
		return []GroupTotal{{Name: NoDataGroup, TotalArea: 1, Placeholder: true}}
	}
	groups := sortedGroups(eligible, GroupDimension(f))
	for _, g := range groups {
		if g.TotalArea > 0 {
			return groups
		}
	}
	return []GroupTotal{{Name: NoDataAvailableGroup, TotalArea: 1, Placeholder: true}}
}
