package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"canestats/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out, base, target string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered dashboard view to an Excel workbook",
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

			view, err := views.View(cmd.Context(), f)
			if err != nil {
				return err
			}
			cmp, err := views.Compare(cmd.Context(), f, base, target)
			if err != nil {
				return err
			}

			wb, err := export.Workbook(view, &cmp)
			if err != nil {
				return err
			}
			defer wb.Close()
			if err := wb.SaveAs(out); err != nil {
				return fmt.Errorf("save workbook %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d records)\n", out, view.Eligible)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "canestats.xlsx", "Output workbook path")
	cmd.Flags().StringVar(&base, "base", "", "Base month for the Compare sheet")
	cmd.Flags().StringVar(&target, "target", "", "Target month for the Compare sheet")
	return cmd
}
