package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gfnpresence/internal/presence"
	"gfnpresence/internal/services"
)

func newPresenceCommand(ctx *commandContext) *cobra.Command {
	var send bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "presence <window title>",
		Short: "Show the Discord activity for a GeForce NOW window title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var updater presence.Updater
			if send {
				client, err := a.discordClient()
				if err != nil {
					return err
				}
				defer client.Close()
				updater = client
			}

			svc := presence.NewService(a.resolver, updater, presence.Options{Instance: a.cfg.Presence.Instance}, a.logger)
			activity, err := svc.HandleTitle(services.WithSource(cmd.Context(), "presence"), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, activity)
			}
			renderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"details", activity.Details},
				{"state", activity.State},
				{"start", activity.StartTimestamp.Format(time.RFC3339)},
				{"instance", fmt.Sprint(activity.Instance)},
				{"large_image_key", activity.LargeImageKey},
			}, nil)
			if send {
				fmt.Fprintln(cmd.OutOrStdout(), "Presence sent to Discord")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "Push the activity to Discord over IPC")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the activity as JSON")
	return cmd
}
