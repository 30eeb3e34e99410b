// Package dataset defines where the division tree comes from. Every source
// yields the same []core.Division; tabular sources (spreadsheets, workbooks)
// are converted through RowsToTree.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"canestats/internal/core"
)

// Loader produces the full division tree from one source.
type Loader interface {
	Load(ctx context.Context) ([]core.Division, error)
	// Source names the backing store, e.g. "file" or "sheets".
	Source() string
}

// ErrMissingColumn is returned when a tabular source lacks a required header.
var ErrMissingColumn = errors.New("missing column")

type column func(rec *core.TalukaRecord, cell string)

func text(set func(*core.TalukaRecord, string)) column {
	return func(rec *core.TalukaRecord, cell string) { set(rec, strings.TrimSpace(cell)) }
}

func number(set func(*core.TalukaRecord, core.Number)) column {
	return func(rec *core.TalukaRecord, cell string) { set(rec, core.ParseCell(cell)) }
}

// columns maps normalized header names onto record fields. Keys match the
// JSON document's field names.
var columns = map[string]column{
	"taluka":                   text(func(r *core.TalukaRecord, v string) { r.Taluka = v }),
	"district":                 text(func(r *core.TalukaRecord, v string) { r.District = v }),
	"division":                 text(func(r *core.TalukaRecord, v string) { r.Division = v }),
	"year":                     text(func(r *core.TalukaRecord, v string) { r.Year = v }),
	"month":                    text(func(r *core.TalukaRecord, v string) { r.Month = v }),
	"total_area_ha":            number(func(r *core.TalukaRecord, v core.Number) { r.TotalAreaHa = v }),
	"suru_ha":                  number(func(r *core.TalukaRecord, v core.Number) { r.SuruHa = v }),
	"ratoon_ha":                number(func(r *core.TalukaRecord, v core.Number) { r.RatoonHa = v }),
	"adsali_ha":                number(func(r *core.TalukaRecord, v core.Number) { r.AdsaliHa = v }),
	"pre_season_ha":            number(func(r *core.TalukaRecord, v core.Number) { r.PreSeasonHa = v }),
	"harvested_area_ha":        number(func(r *core.TalukaRecord, v core.Number) { r.HarvestedAreaHa = v }),
	"soil_moisture_percent":    number(func(r *core.TalukaRecord, v core.Number) { r.SoilMoisturePercent = v }),
	"sugar_recovery_percent":   number(func(r *core.TalukaRecord, v core.Number) { r.SugarRecoveryPercent = v }),
	"productivity_tons_per_ha": number(func(r *core.TalukaRecord, v core.Number) { r.ProductivityTonsPerHa = v }),
	"production_tons":          number(func(r *core.TalukaRecord, v core.Number) { r.ProductionTons = v }),
	"season_2025_26":           number(func(r *core.TalukaRecord, v core.Number) { r.Season202526 = v }),
	"estimated_area_ha":        number(func(r *core.TalukaRecord, v core.Number) { r.EstimatedAreaHa = v }),
}

// NormalizeHeader lowercases a header cell and joins its words with
// underscores, so "Total Area (ha)" and "total_area_ha" match.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("(", " ", ")", " ", "-", " ", "/", " ").Replace(h)
	return strings.Join(strings.Fields(h), "_")
}

// RowsToRecords converts a header row followed by data rows into leaf
// records. Unknown columns are ignored; division, district and taluka are
// required. Rows without a taluka are skipped.
func RowsToRecords(rows [][]string) ([]core.TalukaRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]column, len(rows[0]))
	seen := map[string]bool{}
	for i, h := range rows[0] {
		name := NormalizeHeader(h)
		if col, ok := columns[name]; ok {
			header[i] = col
			seen[name] = true
		}
	}
	for _, required := range []string{"division", "district", "taluka"} {
		if !seen[required] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	records := make([]core.TalukaRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var rec core.TalukaRecord
		for i, cell := range row {
			if i < len(header) && header[i] != nil {
				header[i](&rec, cell)
			}
		}
		if rec.Taluka == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// RowsToTree converts tabular rows into the division tree.
func RowsToTree(rows [][]string) ([]core.Division, error) {
	records, err := RowsToRecords(rows)
	if err != nil {
		return nil, err
	}
	return core.TreeFromRecords(records), nil
}
