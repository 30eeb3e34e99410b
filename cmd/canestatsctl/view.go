package main

import (
	"github.com/spf13/cobra"

	"canestats/internal/aggregator"
)

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the filter choices available for the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.filters()
			if err != nil {
				return err
			}
			views, closeFn, err := opts.views(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			o, err := views.Options(cmd.Context(), f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), o)
		},
	}
}

func newViewCmd(opts *rootOptions) *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the dashboard view for the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.filters()
			if err != nil {
				return err
			}
			var m aggregator.Metric
			if metric != "" {
				if m, err = aggregator.ParseMetric(metric); err != nil {
					return err
				}
			}
			views, closeFn, err := opts.views(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if m != "" {
				series, err := views.MetricSeries(cmd.Context(), f, m)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), series)
			}
			view, err := views.View(cmd.Context(), f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "", "Print a single seasonal metric series: suru_ha, ratoon_ha, adsali_ha or pre_season_ha")
	return cmd
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var base, target string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two months for the current filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.filters()
			if err != nil {
				return err
			}
			views, closeFn, err := opts.views(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			cmp, err := views.Compare(cmd.Context(), f, base, target)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmp)
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base month (default: COMPARE_BASE_MONTH)")
	cmd.Flags().StringVar(&target, "target", "", "Target month (default: COMPARE_TARGET_MONTH)")
	return cmd
}
