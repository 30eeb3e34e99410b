package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"canestats/internal/amqp"
	"canestats/internal/cli"
	"canestats/internal/config"
	"canestats/internal/storage"
	"canestats/internal/worker"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the configured source once into the snapshot store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.DatasetSource == config.SourceSQLite {
				return fmt.Errorf("import needs an upstream source, got %q", opts.cfg.DatasetSource)
			}
			ctx := cmd.Context()

			loader, err := cli.OpenLoader(ctx, opts.logger, opts.cfg)
			if err != nil {
				return err
			}
			defer loader.Close()

			repo, err := storage.NewSQLiteRepository(opts.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			var publisher worker.Publisher
			if publish && opts.cfg.AMQPEnabled() {
				client, err := amqp.NewClient(opts.cfg.AMQPURL, opts.cfg.AMQPExchange, opts.cfg.AMQPQueue)
				if err != nil {
					return err
				}
				defer client.Close()
				publisher = client
			}

			snap, err := worker.NewImportWorker(loader.Loader, repo, publisher, nil, opts.cfg.SnapshotKeep).RunOnce(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", true, "Announce the snapshot over AMQP when AMQP_URL is set")
	return cmd
}

func newSnapshotsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored dataset snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			repo, err := storage.NewSQLiteRepository(opts.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			snaps, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSOURCE\tCREATED\tDIVISIONS\tRECORDS")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", s.ID, s.Source, s.CreatedAt.Format(time.RFC3339), s.DivisionCount, s.RecordCount)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots to list")
	return cmd
}
