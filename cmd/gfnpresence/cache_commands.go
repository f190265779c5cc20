package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gfnpresence/internal/gamecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheGetCommand(ctx))
	cacheCmd.AddCommand(newCacheForgetCommand(ctx))
	cacheCmd.AddCommand(newCachePathCommand(ctx))

	return cacheCmd
}

func entryStatus(cache *gamecache.Cache, entry gamecache.Entry) string {
	switch {
	case entry.Legacy:
		return "legacy"
	case gamecache.Valid(&entry, time.Now(), cache.TTL()):
		return "valid"
	default:
		return "expired"
	}
}

func entryCachedAt(entry gamecache.Entry) string {
	if entry.CachedAt.IsZero() {
		return "-"
	}
	return entry.CachedAt.Local().Format("2006-01-02 15:04")
}

type cacheRow struct {
	Title    string     `json:"title"`
	AppID    string     `json:"app_id"`
	CachedAt *time.Time `json:"cached_at,omitempty"`
	Status   string     `json:"status"`
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			records := cache.Entries()

			if asJSON {
				rows := make([]cacheRow, 0, len(records))
				for _, record := range records {
					row := cacheRow{Title: record.Title, AppID: record.Entry.ID, Status: entryStatus(cache, record.Entry)}
					if !record.Entry.CachedAt.IsZero() {
						cachedAt := record.Entry.CachedAt
						row.CachedAt = &cachedAt
					}
					rows = append(rows, row)
				}
				return writeJSON(cmd, rows)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.Title,
					record.Entry.ID,
					entryCachedAt(record.Entry),
					entryStatus(cache, record.Entry),
				})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"Title", "App ID", "Cached", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit entries as JSON")
	return cmd
}

func newCacheGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <title>",
		Short: "Show the cached app id for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			entry, ok := cache.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%q is not cached", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", entry.ID, entryStatus(cache, entry), entryCachedAt(entry))
			return nil
		},
	}
}

func newCacheForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <title>",
		Short: "Remove a title so the next lookup searches again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			if !cache.Remove(args[0]) {
				return fmt.Errorf("%q is not cached", args[0])
			}
			if err := cache.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q\n", args[0])
			return nil
		},
	}
}

func newCachePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "primary: %s\n", cfg.Paths.CacheFile)
			if cfg.MirrorDisabled() {
				fmt.Fprintln(out, "mirror: disabled")
			} else {
				fmt.Fprintf(out, "mirror: %s\n", cfg.Paths.MirrorFile)
			}
			return nil
		},
	}
}
