package backend

import (
	"fmt"

	"canestats/internal/config"
)

// FromAppConfig converts the application config to loader config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sourceType := SourceType(appConfig.DatasetSource)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid dataset source in config: %s", appConfig.DatasetSource)
	}

	return Config{
		Type: sourceType,

		DatasetPath:  appConfig.DatasetPath,
		DatasetURL:   appConfig.DatasetURL,
		ExcelPath:    appConfig.ExcelPath,
		ExcelSheet:   appConfig.ExcelSheet,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the loader configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid source type: %s", c.Type)
	}

	switch c.Type {
	case FileSource:
		if c.DatasetPath == "" {
			return fmt.Errorf("dataset path is required for file source")
		}
	case RemoteSource:
		if c.DatasetURL == "" {
			return fmt.Errorf("dataset URL is required for remote source")
		}
	case ExcelSource:
		if c.ExcelPath == "" {
			return fmt.Errorf("workbook path is required for excel source")
		}
	case SQLiteSource:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite source")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
		if c.GoogleSheetName == "" {
			return fmt.Errorf("Google Sheet name is required for sheets source")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("service account credentials are required for sheets source")
		}
	}

	return nil
}

// GetSourceTypes returns all valid source types
func GetSourceTypes() []SourceType {
	return []SourceType{FileSource, RemoteSource, SQLiteSource, SheetsSource, ExcelSource}
}

// GetSourceTypeStrings returns all valid source type strings
func GetSourceTypeStrings() []string {
	types := GetSourceTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
