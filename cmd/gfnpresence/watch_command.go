package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gfnpresence/internal/logging"
	"gfnpresence/internal/presence"
	"gfnpresence/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Read window titles from stdin and keep Discord presence in sync",
		Long: "Reads one GeForce NOW window title per line from stdin and updates the\n" +
			"Discord activity whenever the title changes. Only one watcher may run at a time.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var updater presence.Updater
			client, err := a.discordClient()
			if err != nil {
				logging.WarnWithContext(a.logger, "discord presence unavailable; titles will only be resolved", "presence_unavailable",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "set presence.client_id or DISCORD_CLIENT_ID and enable presence"),
					logging.String(logging.FieldImpact, "Discord status is not updated"),
				)
			} else {
				defer client.Close()
				updater = client
			}

			svc := presence.NewService(a.resolver, updater, presence.Options{Instance: a.cfg.Presence.Instance}, a.logger)
			watcher, err := watch.New(a.cfg.LockPath(), svc, a.logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watcher.Run(runCtx, cmd.InOrStdin())
		},
	}
}
