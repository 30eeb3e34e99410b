package backend

import (
	"context"
	"fmt"
	"log/slog"

	"canestats/internal/dataset/excel"
	"canestats/internal/dataset/file"
	"canestats/internal/dataset/remote"
	"canestats/internal/dataset/sheets"
	"canestats/internal/dataset/snapshot"
	"canestats/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new loader factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateLoader implements Factory.CreateLoader
func (f *DefaultFactory) CreateLoader(ctx context.Context, config Config) (*LoaderResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileSource:
		f.logger.Info("Initialized file dataset source", "path", config.DatasetPath)
		return &LoaderResult{Loader: file.New(config.DatasetPath)}, nil

	case RemoteSource:
		f.logger.Info("Initialized remote dataset source", "url", config.DatasetURL)
		return &LoaderResult{Loader: remote.New(config.DatasetURL, nil)}, nil

	case ExcelSource:
		f.logger.Info("Initialized excel dataset source", "path", config.ExcelPath, "sheet", config.ExcelSheet)
		return &LoaderResult{Loader: excel.New(config.ExcelPath, config.ExcelSheet)}, nil

	case SQLiteSource:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized sqlite snapshot source", "db_path", config.SQLiteDBPath)
		return &LoaderResult{Loader: snapshot.New(repo), Cleanup: repo.Close}, nil

	case SheetsSource:
		cli, err := sheets.New(ctx, sheets.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets dataset source", "sheet", config.GoogleSheetName)
		return &LoaderResult{Loader: cli}, nil

	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}
