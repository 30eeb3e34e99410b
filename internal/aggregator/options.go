package aggregator

import (
	"sort"

	"canestats/internal/core"
)

// Options are the selectable values for every filter control.
type Options struct {
	Divisions []string `json:"divisions"`
	Districts []string `json:"districts"`
	Talukas   []string `json:"talukas"`
	Years     []string `json:"years"`
	Months    []string `json:"months"`
}

// Divisions lists division names in stored order, without placeholders.
func Divisions(ds *core.Dataset) []string {
	out := make([]string, 0, len(ds.Divisions()))
	for _, div := range ds.Divisions() {
		if core.IsPlaceholderDivision(div.Name) {
			continue
		}
		out = append(out, div.Name)
	}
	return out
}

// Years lists distinct non-empty years, ascending.
func Years(ds *core.Dataset) []string {
	return distinctSorted(ds.Records(), func(rec core.TalukaRecord) string { return rec.Year })
}

// Months lists distinct non-empty months, restricted to year when set.
func Months(ds *core.Dataset, year string) []string {
	records := ds.Records()
	if year != "" {
		records = filterRecords(records, func(rec core.TalukaRecord) bool { return rec.Year == year })
	}
	return distinctSorted(records, func(rec core.TalukaRecord) string { return rec.Month })
}

// Districts lists the districts of the selected division in stored order.
func Districts(ds *core.Dataset, division string) []string {
	out := []string{}
	if division == "" {
		return out
	}
	div, ok := ds.Division(division)
	if !ok {
		return out
	}
	for _, dist := range div.Districts {
		out = append(out, dist.Name)
	}
	return out
}

// Talukas lists distinct taluka names of the selected district in
// first-seen order.
func Talukas(ds *core.Dataset, division, district string) []string {
	out := []string{}
	if district == "" {
		return out
	}
	dist, ok := ds.District(division, district)
	if !ok {
		return out
	}
	seen := map[string]bool{}
	for _, rec := range dist.Talukas {
		if seen[rec.Taluka] {
			continue
		}
		seen[rec.Taluka] = true
		out = append(out, rec.Taluka)
	}
	return out
}

// OptionsFor derives every option list for the current filters.
func OptionsFor(ds *core.Dataset, f core.FilterState) Options {
	return Options{
		Divisions: Divisions(ds),
		Districts: Districts(ds, f.Division()),
		Talukas:   Talukas(ds, f.Division(), f.District()),
		Years:     Years(ds),
		Months:    Months(ds, f.Year()),
	}
}

func distinctSorted(records []core.TalukaRecord, key func(core.TalukaRecord) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, rec := range records {
		k := key(rec)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
