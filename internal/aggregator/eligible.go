package aggregator

import "canestats/internal/core"

// Eligible resolves the leaf records selected by f. The hierarchical scope is
// resolved most-specific first; month and year filters are then applied on
// top of it. An unknown division or district yields an empty set.
func Eligible(ds *core.Dataset, f core.FilterState) []core.TalukaRecord {
	var scope []core.TalukaRecord

	switch {
	case f.Taluka() != "":
		if dist, ok := ds.District(f.Division(), f.District()); ok {
			scope = filterRecords(dist.Talukas, func(rec core.TalukaRecord) bool {
				return rec.Taluka == f.Taluka()
			})
		}
	case f.District() != "":
		if dist, ok := ds.District(f.Division(), f.District()); ok {
			scope = dist.Talukas
		}
	case f.Division() != "":
		if div, ok := ds.Division(f.Division()); ok {
			for _, dist := range div.Districts {
				scope = append(scope, dist.Talukas...)
			}
		}
	default:
		scope = ds.Records()
	}

	if month := f.Month(); month != "" {
		scope = filterRecords(scope, func(rec core.TalukaRecord) bool { return rec.Month == month })
	}
	if year := f.Year(); year != "" {
		scope = filterRecords(scope, func(rec core.TalukaRecord) bool { return rec.Year == year })
	}
	return scope
}

// filterRecords returns a new slice; the input is never modified.
func filterRecords(records []core.TalukaRecord, keep func(core.TalukaRecord) bool) []core.TalukaRecord {
	out := make([]core.TalukaRecord, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
