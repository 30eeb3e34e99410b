// Package export renders dashboard views as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"canestats/internal/aggregator"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetGroups   = "Groups"
	SheetSeasonal = "Seasonal"
	SheetMetrics  = "Metrics"
	SheetCompare  = "Compare"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds a workbook for view. cmp is optional; a nil comparison
// omits the Compare sheet.
func Workbook(view aggregator.ViewData, cmp *aggregator.Comparison) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	steps := []func(*excelize.File, aggregator.ViewData) error{
		writeSummary,
		writeGroups,
		writeSeasonal,
		writeMetrics,
	}
	for _, step := range steps {
		if err := step(f, view); err != nil {
			f.Close()
			return nil, err
		}
	}
	if cmp != nil {
		if err := writeCompare(f, *cmp); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write streams the workbook for view to w.
func Write(w io.Writer, view aggregator.ViewData, cmp *aggregator.Comparison) error {
	f, err := Workbook(view, cmp)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, view aggregator.ViewData) error {
	filters := view.Filters
	rows := [][]any{
		{"Filter", "Value"},
		{"Division", orAll(filters.Division())},
		{"District", orAll(filters.District())},
		{"Taluka", orAll(filters.Taluka())},
		{"Year", orAll(filters.Year())},
		{"Month", orAll(filters.Month())},
		{},
		{"Indicator", "Value"},
		{"Eligible records", view.Eligible},
		{"Total area (ha)", view.KPI.TotalArea},
		{"Divisions", view.KPI.TotalDivisions},
		{"Districts", view.KPI.TotalDistricts},
		{"Talukas", view.KPI.TotalTalukas},
		{"Season 2025-26 (ha)", view.KPI.Season202526},
		{"Harvested area (ha)", view.KPI.HarvestedArea},
		{"Production (t)", view.KPI.Production},
		{"Soil moisture (%)", view.Averages.SoilMoisturePercent},
		{"Sugar recovery (%)", view.Averages.SugarRecoveryPercent},
		{"Productivity (t/ha)", view.Averages.ProductivityTonsPerHa},
	}
	return writeTable(f, SheetSummary, rows, 24)
}

func writeGroups(f *excelize.File, view aggregator.ViewData) error {
	rows := [][]any{{"Name", "Total area (ha)"}}
	for _, s := range view.Pie {
		rows = append(rows, []any{s.Name, s.Value})
	}
	return writeTable(f, SheetGroups, rows, 20)
}

func writeSeasonal(f *excelize.File, view aggregator.ViewData) error {
	rows := [][]any{{"Name", "Suru (ha)", "Ratoon (ha)", "Adsali (ha)", "Pre-season (ha)"}}
	for _, b := range view.Bar {
		rows = append(rows, []any{b.Name, b.SuruHa, b.RatoonHa, b.AdsaliHa, b.PreSeasonHa})
	}
	return writeTable(f, SheetSeasonal, rows, 18)
}

func writeMetrics(f *excelize.File, view aggregator.ViewData) error {
	rows := [][]any{{"Metric", "Name", "Value"}}
	for _, series := range view.Metrics {
		if series.NoData {
			rows = append(rows, []any{string(series.Metric), "no data", ""})
			continue
		}
		for _, p := range series.Points {
			rows = append(rows, []any{string(series.Metric), p.Name, p.Value})
		}
	}
	return writeTable(f, SheetMetrics, rows, 18)
}

func writeCompare(f *excelize.File, cmp aggregator.Comparison) error {
	rows := [][]any{{"Metric", cmp.BaseMonth, cmp.TargetMonth}}
	for _, r := range cmp.Rows {
		rows = append(rows, []any{r.Metric, r.Base, r.Target})
	}
	return writeTable(f, SheetCompare, rows, 20)
}

// writeTable creates sheet if needed and writes rows from A1, the first row
// being the header.
func writeTable(f *excelize.File, sheet string, rows [][]any, width float64) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}
	cols := 0
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cols = max(cols, len(row))
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if cols > 0 {
		last, err := excelize.ColumnNumberToName(cols)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, width); err != nil {
			return fmt.Errorf("set %s column width: %w", sheet, err)
		}
	}
	return nil
}

func orAll(v string) string {
	if v == "" {
		return "All"
	}
	return v
}
