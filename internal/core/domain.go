package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Placeholder division names that never appear in selection lists.
const (
	UnknownDivision  = "Unknown"
	SentinelDivision = "अहमदनगर"
)

type (
	// TalukaRecord is one dated observation for a single taluka.
	TalukaRecord struct {
		Taluka   string `json:"taluka"`
		District string `json:"district"`
		Division string `json:"division"`
		Year     string `json:"year"`
		Month    string `json:"month"`

		TotalAreaHa           Number `json:"total_area_ha"`
		SuruHa                Number `json:"suru_ha"`
		RatoonHa              Number `json:"ratoon_ha"`
		AdsaliHa              Number `json:"adsali_ha"`
		PreSeasonHa           Number `json:"pre_season_ha"`
		HarvestedAreaHa       Number `json:"harvested_area_ha"`
		SoilMoisturePercent   Number `json:"soil_moisture_percent"`
		SugarRecoveryPercent  Number `json:"sugar_recovery_percent"`
		ProductivityTonsPerHa Number `json:"productivity_tons_per_ha"`
		ProductionTons        Number `json:"production_tons"`
		Season202526          Number `json:"season_2025_26"`
		EstimatedAreaHa       Number `json:"estimated_area_ha"`
	}

	District struct {
		Name    string
		Talukas []TalukaRecord
	}

	Division struct {
		Name      string
		Districts []District
	}
)

type districtJSON struct {
	District string         `json:"district"`
	Name     string         `json:"name,omitempty"`
	Talukas  []TalukaRecord `json:"talukas"`
}

type divisionJSON struct {
	Division  string     `json:"division"`
	Name      string     `json:"name,omitempty"`
	Districts []District `json:"districts"`
}

func (d *District) UnmarshalJSON(data []byte) error {
	var raw districtJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Name = raw.District
	if d.Name == "" {
		d.Name = raw.Name
	}
	d.Talukas = raw.Talukas
	return nil
}

func (d District) MarshalJSON() ([]byte, error) {
	talukas := d.Talukas
	if talukas == nil {
		talukas = []TalukaRecord{}
	}
	return json.Marshal(districtJSON{District: d.Name, Talukas: talukas})
}

func (d *Division) UnmarshalJSON(data []byte) error {
	var raw divisionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Name = raw.Division
	if d.Name == "" {
		d.Name = raw.Name
	}
	d.Districts = raw.Districts
	return nil
}

func (d Division) MarshalJSON() ([]byte, error) {
	districts := d.Districts
	if districts == nil {
		districts = []District{}
	}
	return json.Marshal(divisionJSON{Division: d.Name, Districts: districts})
}

// IsPlaceholderDivision reports whether a division name must be hidden from
// selection lists. Placeholders still count towards aggregates.
func IsPlaceholderDivision(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed == "" || name == UnknownDivision || name == SentinelDivision
}

// DecodeDivisions reads a JSON array of divisions.
func DecodeDivisions(r io.Reader) ([]Division, error) {
	var divisions []Division
	if err := json.NewDecoder(r).Decode(&divisions); err != nil {
		return nil, fmt.Errorf("decode divisions: %w", err)
	}
	return divisions, nil
}

// TreeFromRecords rebuilds the division → district → taluka tree from flat
// rows, keeping first-seen order at every level.
func TreeFromRecords(records []TalukaRecord) []Division {
	var divisions []Division
	divIndex := map[string]int{}
	distIndex := map[string]map[string]int{}

	for _, rec := range records {
		di, ok := divIndex[rec.Division]
		if !ok {
			di = len(divisions)
			divIndex[rec.Division] = di
			distIndex[rec.Division] = map[string]int{}
			divisions = append(divisions, Division{Name: rec.Division})
		}
		dj, ok := distIndex[rec.Division][rec.District]
		if !ok {
			dj = len(divisions[di].Districts)
			distIndex[rec.Division][rec.District] = dj
			divisions[di].Districts = append(divisions[di].Districts, District{Name: rec.District})
		}
		divisions[di].Districts[dj].Talukas = append(divisions[di].Districts[dj].Talukas, rec)
	}
	return divisions
}
