package core

// Dataset is the immutable in-memory tree a dashboard session works against.
// Callers must treat every slice returned by its accessors as read-only.
type Dataset struct {
	divisions     []Division
	records       []TalukaRecord
	districtCount int
}

// NewDataset copies the tree, back-filling blank district/division
// references on leaf records from their owners.
func NewDataset(divisions []Division) *Dataset {
	ds := &Dataset{divisions: make([]Division, len(divisions))}
	for i, div := range divisions {
		copied := Division{Name: div.Name, Districts: make([]District, len(div.Districts))}
		for j, dist := range div.Districts {
			talukas := make([]TalukaRecord, len(dist.Talukas))
			for k, rec := range dist.Talukas {
				if rec.District == "" {
					rec.District = dist.Name
				}
				if rec.Division == "" {
					rec.Division = div.Name
				}
				talukas[k] = rec
			}
			copied.Districts[j] = District{Name: dist.Name, Talukas: talukas}
			ds.records = append(ds.records, talukas...)
		}
		ds.districtCount += len(div.Districts)
		ds.divisions[i] = copied
	}
	return ds
}

// Divisions returns the divisions in stored order.
func (d *Dataset) Divisions() []Division {
	if d == nil {
		return nil
	}
	return d.divisions
}

// Records returns every leaf record, flattened in tree order.
func (d *Dataset) Records() []TalukaRecord {
	if d == nil {
		return nil
	}
	return d.records
}

// DistrictCount is the number of districts across all divisions.
func (d *Dataset) DistrictCount() int {
	if d == nil {
		return 0
	}
	return d.districtCount
}

// Division looks up a division by exact name.
func (d *Dataset) Division(name string) (Division, bool) {
	for _, div := range d.Divisions() {
		if div.Name == name {
			return div, true
		}
	}
	return Division{}, false
}

// District looks up a district inside the named division.
func (d *Dataset) District(division, district string) (District, bool) {
	div, ok := d.Division(division)
	if !ok {
		return District{}, false
	}
	for _, dist := range div.Districts {
		if dist.Name == district {
			return dist, true
		}
	}
	return District{}, false
}
