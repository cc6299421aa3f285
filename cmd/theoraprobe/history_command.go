package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"theoraprobe/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var outcome string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent probe results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch outcome {
			case "", history.OutcomeReady, history.OutcomeIO, history.OutcomeBadHeaders, history.OutcomeNoVideo:
			default:
				return fmt.Errorf("unknown outcome %q", outcome)
			}
			return ctx.withHistory(func(store *history.Store) error {
				records, err := store.Recent(cmd.Context(), limit, outcome)
				if err != nil {
					return err
				}
				if jsonOutput {
					if records == nil {
						records = []history.Record{}
					}
					return writeJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No probes recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistory(records))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Only show one outcome (ready, io, bad_headers, no_video)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")

	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d probe records\n", n)
				return nil
			})
		},
	}
}

func renderHistory(records []history.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		frame := "-"
		if rec.Outcome == history.OutcomeReady && rec.Width > 0 {
			frame = fmt.Sprintf("%dx%d @ %.2f", rec.Width, rec.Height, rec.FPS)
		}
		size := "-"
		if rec.SizeBytes > 0 {
			size = humanize.IBytes(uint64(rec.SizeBytes))
		}
		rows = append(rows, []string{
			strconv.FormatInt(rec.ID, 10),
			humanize.Time(rec.CreatedAt),
			rec.Outcome,
			rec.Path,
			size,
			frame,
			strconv.Itoa(rec.Pages),
		})
	}
	return renderTable(
		[]string{"ID", "When", "Outcome", "Path", "Size", "Frame", "Pages"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
	)
}
