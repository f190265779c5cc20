package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gfnpresence/internal/resolution/overrides"
)

func newOverridesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "overrides",
		Short: "List manual title overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog := overrides.NewCatalog(cfg.Overrides.Path, ctx.ensureLogger())
			all := catalog.All()
			rows := make([][]string, 0, len(all))
			for _, o := range all {
				rows = append(rows, []string{o.Title, o.AppID})
			}
			renderTable(cmd.OutOrStdout(), []string{"Title", "App ID"}, rows, []columnAlignment{alignLeft, alignRight})
			if cfg.Overrides.Path != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "user overrides: %s\n", cfg.Overrides.Path)
			}
			return nil
		},
	}
}
