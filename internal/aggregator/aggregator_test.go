package aggregator

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"canestats/internal/core"
)

func mustDataset(t *testing.T, js string) *core.Dataset {
	t.Helper()
	divs, err := core.DecodeDivisions(strings.NewReader(js))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return core.NewDataset(divs)
}

func mustFilter(t *testing.T, division, district, taluka, year, month string) core.FilterState {
	t.Helper()
	f, err := core.NewFilterState(division, district, taluka, year, month)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	return f
}

const fixture = `[
  {"division": "Pune", "districts": [
    {"district": "Satara", "talukas": [
      {"taluka": "Karad", "year": "2024", "month": "Jan", "total_area_ha": 100, "suru_ha": 10, "ratoon_ha": 5, "adsali_ha": 1, "pre_season_ha": 4, "season_2025_26": 7, "harvested_area_ha": 50, "production_tons": 900, "soil_moisture_percent": "40", "sugar_recovery_percent": 11, "productivity_tons_per_ha": "80"},
      {"taluka": "Karad", "year": "2025", "month": "Feb", "total_area_ha": 60, "suru_ha": 6, "soil_moisture_percent": "abc"},
      {"taluka": "Wai", "year": "2024", "month": "Jan", "total_area_ha": 40, "ratoon_ha": 30}
    ]},
    {"district": "Sangli", "talukas": [
      {"taluka": "Miraj", "year": "2025", "month": "Feb", "total_area_ha": "25", "adsali_ha": 2}
    ]}
  ]},
  {"division": "Nashik", "districts": [
    {"district": "Ahmednagar", "talukas": [
      {"taluka": "Rahuri", "year": "2024", "month": "Mar", "total_area_ha": 70, "pre_season_ha": 50}
    ]}
  ]},
  {"division": "अहमदनगर", "districts": [
    {"district": "Sentinel", "talukas": [
      {"taluka": "S1", "year": "2023", "month": "Dec", "total_area_ha": 5}
    ]}
  ]},
  {"division": "Unknown"},
  {"division": ""}
]`

func TestOptions(t *testing.T) {
	ds := mustDataset(t, fixture)

	if got := Divisions(ds); !reflect.DeepEqual(got, []string{"Pune", "Nashik"}) {
		t.Fatalf("divisions=%v", got)
	}
	if got := Years(ds); !reflect.DeepEqual(got, []string{"2023", "2024", "2025"}) {
		t.Fatalf("years=%v", got)
	}
	if got := Months(ds, "2024"); !reflect.DeepEqual(got, []string{"Jan", "Mar"}) {
		t.Fatalf("months(2024)=%v", got)
	}
	if got := Months(ds, ""); len(got) != 4 {
		t.Fatalf("months(all)=%v", got)
	}
	if got := Districts(ds, ""); len(got) != 0 {
		t.Fatalf("districts without division=%v", got)
	}
	if got := Districts(ds, "Pune"); !reflect.DeepEqual(got, []string{"Satara", "Sangli"}) {
		t.Fatalf("districts=%v", got)
	}
	if got := Talukas(ds, "Pune", "Satara"); !reflect.DeepEqual(got, []string{"Karad", "Wai"}) {
		t.Fatalf("talukas=%v", got)
	}
	if got := Talukas(ds, "Pune", ""); len(got) != 0 {
		t.Fatalf("talukas without district=%v", got)
	}
}

func TestEligiblePrecedence(t *testing.T) {
	ds := mustDataset(t, fixture)
	cases := []struct {
		name string
		f    core.FilterState
		want int
	}{
		{"all", core.FilterState{}, 6},
		{"division", mustFilter(t, "Pune", "", "", "", ""), 4},
		{"district", mustFilter(t, "Pune", "Satara", "", "", ""), 3},
		{"taluka", mustFilter(t, "Pune", "Satara", "Karad", "", ""), 2},
		{"taluka+year", mustFilter(t, "Pune", "Satara", "Karad", "2024", ""), 1},
		{"year+month", mustFilter(t, "", "", "", "2025", "Feb"), 2},
		{"month mismatched with year", mustFilter(t, "", "", "", "2024", "Feb"), 0},
		{"unknown division", mustFilter(t, "Nowhere", "", "", "", ""), 0},
		{"unknown district", mustFilter(t, "Nashik", "Satara", "", "", ""), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(Eligible(ds, tc.f)); got != tc.want {
				t.Fatalf("eligible=%d want %d", got, tc.want)
			}
		})
	}
}

func TestEligibleMonotoneAndSubset(t *testing.T) {
	ds := mustDataset(t, fixture)
	all := len(ds.Records())
	chain := []core.FilterState{
		mustFilter(t, "Pune", "Satara", "Karad", "2024", ""),
		mustFilter(t, "Pune", "Satara", "", "2024", ""),
		mustFilter(t, "Pune", "", "", "2024", ""),
		mustFilter(t, "", "", "", "2024", ""),
	}
	prev := -1
	for i, f := range chain {
		n := len(Eligible(ds, f))
		if n > all {
			t.Fatalf("step %d: eligible %d exceeds dataset %d", i, n, all)
		}
		if n < prev {
			t.Fatalf("step %d: eligible shrank from %d to %d while relaxing", i, prev, n)
		}
		prev = n
	}
}

func TestPartitionConsistency(t *testing.T) {
	ds := mustDataset(t, fixture)
	total := ComputeKPI(ds, core.FilterState{}, Eligible(ds, core.FilterState{})).TotalArea

	var parts float64
	for _, div := range ds.Divisions() {
		f := core.FilterState{}.WithDivision(div.Name)
		if f.Division() == "" {
			// A blank division cannot be selected; its records are empty here.
			continue
		}
		parts += ComputeKPI(ds, f, Eligible(ds, f)).TotalArea
	}
	if total != parts {
		t.Fatalf("total=%v sum of divisions=%v", total, parts)
	}
	if total != 300 {
		t.Fatalf("total area=%v want 300", total)
	}
}

func TestKPI(t *testing.T) {
	ds := mustDataset(t, fixture)

	kpi := ComputeKPI(ds, core.FilterState{}, Eligible(ds, core.FilterState{}))
	if kpi.TotalDivisions != 5 || kpi.TotalDistricts != 4 || kpi.TotalTalukas != 6 {
		t.Fatalf("unfiltered kpi=%+v", kpi)
	}
	if kpi.Season202526 != 7 || kpi.HarvestedArea != 50 || kpi.Production != 900 {
		t.Fatalf("sums kpi=%+v", kpi)
	}

	f := mustFilter(t, "Pune", "", "", "", "")
	kpi = ComputeKPI(ds, f, Eligible(ds, f))
	if kpi.TotalDivisions != 1 || kpi.TotalDistricts != 2 || kpi.TotalTalukas != 4 {
		t.Fatalf("division kpi=%+v", kpi)
	}

	f = mustFilter(t, "Pune", "Satara", "Karad", "", "")
	kpi = ComputeKPI(ds, f, Eligible(ds, f))
	if kpi.TotalDistricts != 1 || kpi.TotalTalukas != 1 || kpi.TotalArea != 160 {
		t.Fatalf("taluka kpi=%+v", kpi)
	}
}

func TestEmptyEligibleSet(t *testing.T) {
	ds := mustDataset(t, fixture)
	f := mustFilter(t, "", "", "", "1999", "")
	eligible := Eligible(ds, f)
	if len(eligible) != 0 {
		t.Fatalf("expected empty eligible set")
	}
	if kpi := ComputeKPI(ds, f, eligible); kpi.TotalTalukas != 0 {
		t.Fatalf("totalTalukas=%d", kpi.TotalTalukas)
	}
	got := GroupBy(f, eligible)
	if len(got) != 1 || got[0].Name != "No Data" || got[0].TotalArea != 1 {
		t.Fatalf("group-by=%+v", got)
	}
	if bars := BarView(f, eligible); len(bars) != 0 {
		t.Fatalf("bars=%+v", bars)
	}
}

func TestAllZeroAreaPlaceholder(t *testing.T) {
	ds := mustDataset(t, `[{"division":"A","districts":[{"district":"X","talukas":[
		{"taluka":"P","total_area_ha":0,"suru_ha":3},
		{"taluka":"Q","total_area_ha":"n/a"}
	]}]}]`)
	f := mustFilter(t, "A", "X", "", "", "")
	got := GroupBy(f, Eligible(ds, f))
	if len(got) != 1 || got[0].Name != "No Data Available" || got[0].TotalArea != 1 {
		t.Fatalf("group-by=%+v", got)
	}
}

func TestGroupByTalukaWithYear(t *testing.T) {
	ds := mustDataset(t, `[{"division":"A","districts":[{"district":"X","talukas":[
		{"taluka":"P","suru_ha":10,"year":"2024","total_area_ha":12},
		{"taluka":"Q","suru_ha":20,"year":"2025","total_area_ha":30}
	]}]}]`)
	f := mustFilter(t, "A", "X", "", "2024", "")
	eligible := Eligible(ds, f)
	if len(eligible) != 1 || eligible[0].Taluka != "P" {
		t.Fatalf("eligible=%+v", eligible)
	}
	got := GroupBy(f, eligible)
	if len(got) != 1 || got[0].Name != "P" || got[0].TotalArea != 12 || got[0].SuruHa != 10 {
		t.Fatalf("group-by=%+v", got)
	}
}

func TestGroupBySortedBySeasonalTotal(t *testing.T) {
	ds := mustDataset(t, fixture)
	got := GroupBy(core.FilterState{}, Eligible(ds, core.FilterState{}))
	names := make([]string, len(got))
	for i, g := range got {
		names[i] = g.Name
	}
	// Pune seasonal = 20+6+30+2 = 58, Nashik = 50, sentinel = 0
	if !reflect.DeepEqual(names, []string{"Pune", "Nashik", "अहमदनगर"}) {
		t.Fatalf("order=%v", names)
	}
	if got[0].TotalArea != 225 {
		t.Fatalf("Pune total area=%v", got[0].TotalArea)
	}
}

func TestGroupByDimension(t *testing.T) {
	cases := []struct {
		f    core.FilterState
		want Dimension
	}{
		{core.FilterState{}, ByDivision},
		{core.FilterState{}.WithDivision("A"), ByDistrict},
		{core.FilterState{}.WithDivision("A").WithDistrict("X"), ByTaluka},
		{core.FilterState{}.WithDivision("A").WithDistrict("X").WithTaluka("P"), ByTaluka},
	}
	for i, tc := range cases {
		if got := GroupDimension(tc.f); got != tc.want {
			t.Fatalf("case %d: %s want %s", i, got, tc.want)
		}
	}
}

func TestGroupByOrderIndependent(t *testing.T) {
	ds := mustDataset(t, fixture)
	records := append([]core.TalukaRecord(nil), Eligible(ds, core.FilterState{})...)
	want := GroupBy(core.FilterState{}, records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(records), func(a, b int) { records[a], records[b] = records[b], records[a] })
		got := GroupBy(core.FilterState{}, records)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %d changed result:\n got %+v\nwant %+v", i, got, want)
		}
	}
}

func TestBarViewTalukaSelected(t *testing.T) {
	ds := mustDataset(t, fixture)
	f := mustFilter(t, "Pune", "Satara", "Karad", "2024", "")
	bars := BarView(f, Eligible(ds, f))
	if len(bars) != 4 {
		t.Fatalf("bars=%+v", bars)
	}
	if bars[0].Name != "suru_ha" || bars[0].SuruHa != 10 || bars[0].RatoonHa != 0 {
		t.Fatalf("first bar=%+v", bars[0])
	}
	if bars[3].Name != "pre_season_ha" || bars[3].PreSeasonHa != 4 {
		t.Fatalf("last bar=%+v", bars[3])
	}
}

func TestBarViewDistrictSelected(t *testing.T) {
	ds := mustDataset(t, fixture)
	f := mustFilter(t, "Pune", "Satara", "", "", "")
	bars := BarView(f, Eligible(ds, f))
	if len(bars) != 2 || bars[0].Name != "Wai" || bars[1].Name != "Karad" {
		t.Fatalf("bars=%+v", bars)
	}
	if bars[1].SuruHa != 16 {
		t.Fatalf("Karad suru=%v", bars[1].SuruHa)
	}
}

func TestMetricViewDropsZeroGroups(t *testing.T) {
	ds := mustDataset(t, fixture)
	f := mustFilter(t, "Pune", "", "", "", "")
	series := MetricView(f, Eligible(ds, f), MetricAdsali)
	if series.NoData || len(series.Points) != 2 {
		t.Fatalf("adsali series=%+v", series)
	}
	if series.Points[0] != (Slice{Name: "Satara", Value: 1}) || series.Points[1] != (Slice{Name: "Sangli", Value: 2}) {
		t.Fatalf("points=%+v", series.Points)
	}

	f = mustFilter(t, "Nashik", "", "", "", "")
	series = MetricView(f, Eligible(ds, f), MetricSuru)
	if !series.NoData || len(series.Points) != 0 {
		t.Fatalf("expected no data, got %+v", series)
	}
}

func TestAverageExcludesUncountable(t *testing.T) {
	var records []core.TalukaRecord
	if err := json.Unmarshal([]byte(`[
		{"soil_moisture_percent": "40"},
		{"soil_moisture_percent": "abc"},
		{"soil_moisture_percent": 0}
	]`), &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := Average(records, SoilMoisture); got != 40 {
		t.Fatalf("average=%v want 40", got)
	}
	if got := Average(nil, SoilMoisture); got != 0 {
		t.Fatalf("empty average=%v", got)
	}
	if got := Average(records, SugarRecovery); got != 0 {
		t.Fatalf("all-absent average=%v", got)
	}
}

func TestAverageSkipsNegativeNumbers(t *testing.T) {
	var records []core.TalukaRecord
	if err := json.Unmarshal([]byte(`[
		{"productivity_tons_per_ha": -3},
		{"productivity_tons_per_ha": 90},
		{"productivity_tons_per_ha": "70 t"}
	]`), &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := Average(records, Productivity); got != 80 {
		t.Fatalf("average=%v want 80", got)
	}
	if got := Average(records[:1], Productivity); got != 0 {
		t.Fatalf("negative-only average=%v want 0", got)
	}
}

func TestSumIgnoresPartlyNumericText(t *testing.T) {
	ds := mustDataset(t, `[{"division":"A","districts":[{"district":"X","talukas":[
		{"taluka":"P","total_area_ha":"10","suru_ha":1},
		{"taluka":"Q","total_area_ha":"40%","suru_ha":2}
	]}]}]`)
	eligible := Eligible(ds, core.FilterState{})

	pie := PieView(core.FilterState{}, eligible)
	if len(pie) != 1 || pie[0].Value != 10 {
		t.Fatalf("pie=%+v want total 10", pie)
	}
	if kpi := ComputeKPI(ds, core.FilterState{}, eligible); kpi.TotalArea != 10 {
		t.Fatalf("kpi total area=%v want 10", kpi.TotalArea)
	}
}

func TestSelectedTalukaCountsOneWhenFilteredEmpty(t *testing.T) {
	ds := mustDataset(t, `[{"division":"C","districts":[{"district":"Y","talukas":[
		{"taluka":"P","year":"2024","total_area_ha":12,"suru_ha":3}
	]}]}]`)
	f := mustFilter(t, "C", "Y", "P", "2030", "")
	eligible := Eligible(ds, f)
	if len(eligible) != 0 {
		t.Fatalf("eligible=%+v", eligible)
	}

	kpi := ComputeKPI(ds, f, eligible)
	if kpi.TotalTalukas != 1 || kpi.TotalArea != 0 {
		t.Fatalf("kpi=%+v", kpi)
	}
	if pie := PieView(f, eligible); len(pie) != 1 || pie[0].Name != NoDataGroup {
		t.Fatalf("pie=%+v", pie)
	}
	if bars := BarView(f, eligible); len(bars) != 0 {
		t.Fatalf("bars=%+v", bars)
	}
}

func TestGroupByExactNamesAndStableTies(t *testing.T) {
	rec := func(division string, suru float64) core.TalukaRecord {
		return core.TalukaRecord{Division: division, TotalAreaHa: core.Num(1), SuruHa: core.Num(suru)}
	}
	eligible := []core.TalukaRecord{
		rec("pune", 5), rec("Pune", 5), rec("PUNE", 5),
		rec("Nashik", 9), rec("Kolhapur", 5), rec("Latur", 5),
		rec("Pune", 0), rec("Solapur", 5), rec("Satara", 5),
	}
	got := GroupBy(core.FilterState{}, eligible)
	names := make([]string, len(got))
	for i, g := range got {
		names[i] = g.Name
	}
	want := []string{"Nashik", "pune", "Pune", "PUNE", "Kolhapur", "Latur", "Solapur", "Satara"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order=%v want %v", names, want)
	}
}

func TestCompare(t *testing.T) {
	ds := mustDataset(t, `[{"division":"A","districts":[{"district":"X","talukas":[
		{"taluka":"P","month":"Aug 2024","productivity_tons_per_ha":"80","production_tons":100.4,"estimated_area_ha":10},
		{"taluka":"Q","month":"Aug 2024","productivity_tons_per_ha":0,"production_tons":"abc"},
		{"taluka":"P","month":"Aug 2025","productivity_tons_per_ha":90,"sugar_recovery_percent":-1,"production_tons":200.6}
	]}]}]`)
	cmp := Compare(ds, core.FilterState{}.WithYear("2030"), "Aug 2024", "Aug 2025")
	if len(cmp.Rows) != 5 {
		t.Fatalf("rows=%+v", cmp.Rows)
	}
	if r := cmp.Rows[0]; r.Base != 80 || r.Target != 90 {
		t.Fatalf("productivity=%+v", r)
	}
	if r := cmp.Rows[2]; r.Target != 0 {
		t.Fatalf("negative sugar recovery must be excluded: %+v", r)
	}
	if r := cmp.Rows[3]; r.Base != 100 || r.Target != 201 {
		t.Fatalf("production=%+v", r)
	}

	scoped := Compare(ds, mustFilter(t, "A", "X", "Q", "", ""), "Aug 2024", "Aug 2025")
	if scoped.Rows[0].Base != 0 || scoped.Rows[3].Target != 0 {
		t.Fatalf("taluka-scoped comparison=%+v", scoped.Rows)
	}
}

func TestDeriveView(t *testing.T) {
	ds := mustDataset(t, fixture)
	f := mustFilter(t, "Pune", "", "", "2024", "")
	v := DeriveView(ds, f)
	if v.Eligible != 2 || v.KPI.TotalArea != 140 {
		t.Fatalf("view eligible=%d kpi=%+v", v.Eligible, v.KPI)
	}
	if len(v.Options.Districts) != 2 || len(v.Options.Talukas) != 0 {
		t.Fatalf("options=%+v", v.Options)
	}
	if len(v.Metrics) != 4 || v.Metrics[0].Metric != MetricSuru {
		t.Fatalf("metrics=%+v", v.Metrics)
	}
	if v.Averages.SoilMoisturePercent != 40 || v.Averages.SugarRecoveryPercent != 11 {
		t.Fatalf("averages=%+v", v.Averages)
	}
	if _, err := json.Marshal(v); err != nil {
		t.Fatalf("marshal view: %v", err)
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric("ratoon_ha"); err != nil || m != MetricRatoon {
		t.Fatalf("ParseMetric: %v %v", m, err)
	}
	if _, err := ParseMetric("total_area_ha"); err == nil {
		t.Fatalf("expected error for non-seasonal metric")
	}
}
