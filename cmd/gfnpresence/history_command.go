package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	var pruneDays int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent network lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled (history.enabled = false)")
				return nil
			}
			defer store.Close()

			if pruneDays > 0 {
				cutoff := time.Now().Add(-time.Duration(pruneDays) * 24 * time.Hour)
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d lookups older than %d days\n", removed, pruneDays)
				return nil
			}

			lookups, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, lookups)
			}
			if len(lookups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No lookups recorded")
				return nil
			}
			rows := make([][]string, 0, len(lookups))
			for _, l := range lookups {
				score := ""
				if l.Score > 0 {
					score = strconv.FormatFloat(l.Score, 'f', 1, 64)
				}
				rows = append(rows, []string{
					l.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					l.Title,
					string(l.Outcome),
					l.AppID,
					l.MatchedTitle,
					score,
					l.Duration.String(),
				})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"Time", "Title", "Outcome", "App ID", "Matched", "Score", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of lookups to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit lookups as JSON")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete lookups older than this many days instead of listing")
	return cmd
}
