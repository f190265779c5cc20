package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gfnpresence/internal/presence"
	"gfnpresence/internal/services"
)

type resolveRow struct {
	Title         string  `json:"title"`
	AppID         string  `json:"app_id,omitempty"`
	Found         bool    `json:"found"`
	Source        string  `json:"source,omitempty"`
	Query         string  `json:"query,omitempty"`
	MatchedTitle  string  `json:"matched_title,omitempty"`
	Score         float64 `json:"score,omitempty"`
	ImageKey      string  `json:"large_image_key"`
	CorrelationID string  `json:"correlation_id,omitempty"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <title>...",
		Short: "Resolve game titles to Steam app ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			runCtx := services.WithSource(cmd.Context(), "resolve")
			rows := make([]resolveRow, 0, len(args))
			for _, title := range args {
				res, ok := a.resolver.Resolve(runCtx, title)
				row := resolveRow{Title: title, Found: ok, ImageKey: presence.LargeImageKey(res.ID)}
				if ok {
					row.AppID = res.ID
					row.Source = string(res.Source)
					row.Query = res.Query
					row.MatchedTitle = res.MatchedTitle
					row.Score = res.Score
					row.CorrelationID = res.CorrelationID
				}
				rows = append(rows, row)
			}

			if asJSON {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				id := row.AppID
				if !row.Found {
					id = "-"
				}
				score := ""
				if row.Score > 0 {
					score = strconv.FormatFloat(row.Score, 'f', 1, 64)
				}
				table = append(table, []string{row.Title, id, row.Source, row.MatchedTitle, score})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"Title", "App ID", "Source", "Matched", "Score"},
				table,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight})
			for _, row := range rows {
				if !row.Found {
					fmt.Fprintf(cmd.ErrOrStderr(), "no confident match for %q\n", row.Title)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}
