package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"canestats/internal/cli"
	"canestats/internal/config"
	"canestats/internal/core"
	"canestats/internal/log"
	"canestats/internal/services"
)

type rootOptions struct {
	source  string
	dataset string
	dbPath  string

	division, district, taluka string
	year, month                string

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "canestatsctl",
		Short:        "Query sugarcane dashboard views and manage dataset snapshots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.source, "source", "", "Dataset source: file, remote, sqlite, sheets or excel (default: DATASET_SOURCE)")
	pf.StringVar(&opts.dataset, "dataset", "", "Dataset JSON path for the file source (default: DATASET_PATH)")
	pf.StringVar(&opts.dbPath, "db", "", "Snapshot database path (default: SQLITE_DB_PATH)")
	pf.StringVar(&opts.division, "division", "", "Division filter")
	pf.StringVar(&opts.district, "district", "", "District filter, requires --division")
	pf.StringVar(&opts.taluka, "taluka", "", "Taluka filter, requires --district")
	pf.StringVar(&opts.year, "year", "", "Year filter")
	pf.StringVar(&opts.month, "month", "", "Month filter")

	cmd.AddCommand(
		newOptionsCmd(opts),
		newViewCmd(opts),
		newCompareCmd(opts),
		newImportCmd(opts),
		newSnapshotsCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// load reads the environment configuration and applies flag overrides.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg := config.Load()
	if o.source != "" {
		cfg.DatasetSource = o.source
	}
	if o.dataset != "" {
		cfg.DatasetPath = o.dataset
	}
	if o.dbPath != "" {
		cfg.SQLiteDBPath = o.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	o.logger = log.NewText(cmd.ErrOrStderr(), level, "cli")
	// Keep stdout for command output only.
	log.SetDefault(o.logger)
	o.cfg = cfg
	return nil
}

func (o *rootOptions) filters() (core.FilterState, error) {
	return core.NewFilterState(o.division, o.district, o.taluka, o.year, o.month)
}

// views loads the configured dataset into a fresh ViewService.
func (o *rootOptions) views(ctx context.Context) (*services.ViewService, func(), error) {
	loader, err := cli.OpenLoader(ctx, o.logger, o.cfg)
	if err != nil {
		return nil, nil, err
	}
	vs := services.NewViewService(services.ViewServiceOptions{
		Loader:             loader.Loader,
		Logger:             o.logger.WithComponent(log.ComponentDashboard),
		CacheSize:          o.cfg.ViewCacheSize,
		CompareBaseMonth:   o.cfg.CompareBaseMonth,
		CompareTargetMonth: o.cfg.CompareTargetMonth,
	})
	if _, err := vs.Reload(ctx); err != nil {
		loader.Close()
		return nil, nil, err
	}
	return vs, func() { _ = loader.Close() }, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
