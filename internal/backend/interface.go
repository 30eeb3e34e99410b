package backend

import (
	"context"

	"canestats/internal/dataset"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// LoaderResult contains the loader and an optional cleanup function
type LoaderResult struct {
	Loader  dataset.Loader
	Cleanup CleanupFunc
}

// Close runs the cleanup function when one is set.
func (r *LoaderResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates dataset loaders based on configuration
type Factory interface {
	CreateLoader(ctx context.Context, config Config) (*LoaderResult, error)
}

// Config holds configuration for loader creation
type Config struct {
	Type SourceType

	// file
	DatasetPath string

	// remote
	DatasetURL string

	// excel
	ExcelPath  string
	ExcelSheet string

	// sqlite
	SQLiteDBPath string

	// sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// SourceType names a dataset source
type SourceType string

const (
	FileSource   SourceType = "file"
	RemoteSource SourceType = "remote"
	SQLiteSource SourceType = "sqlite"
	SheetsSource SourceType = "sheets"
	ExcelSource  SourceType = "excel"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case FileSource, RemoteSource, SQLiteSource, SheetsSource, ExcelSource:
		return true
	default:
		return false
	}
}
