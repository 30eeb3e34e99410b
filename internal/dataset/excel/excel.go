// Package excel loads the division tree from a flat worksheet with one row
// per taluka record.
package excel

import (
	"context"
	"fmt"

	"canestats/internal/core"
	"canestats/internal/dataset"

	"github.com/xuri/excelize/v2"
)

type Loader struct {
	path  string
	sheet string
}

var _ dataset.Loader = (*Loader)(nil)

// New returns a loader for the workbook at path. An empty sheet selects the
// first worksheet.
func New(path, sheet string) *Loader {
	return &Loader{path: path, sheet: sheet}
}

func (l *Loader) Source() string { return "excel" }

func (l *Loader) Load(ctx context.Context) ([]core.Division, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", l.path, err)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	divisions, err := dataset.RowsToTree(rows)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", l.path, err)
	}
	return divisions, nil
}
