package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/config"
	"github.com/matheuskafuri/tradewire/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the last saved refresh window",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.SnapshotPath()
		db, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening snapshot: %w", err)
		}
		defer db.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Snapshot: %s\n", dbPath)

		entry, err := db.Snapshot()
		if errors.Is(err, store.ErrNoSnapshot) {
			fmt.Fprintln(out, "No refresh saved yet. Run tradewire, watch or serve first.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Fprintf(out, "Headlines: %d\n", count)
		fmt.Fprintf(out, "Fetched: %s (%s)\n", humanize.Time(entry.FetchedAt), entry.FetchedAt.Local().Format("Jan 2 15:04:05"))
		fmt.Fprintf(out, "Size: %s\n", humanize.Bytes(uint64(size)))
		if !cfg.SnapshotEnabled() {
			fmt.Fprintln(out, "Snapshots are disabled in config; this window may be old.")
		}
		return nil
	},
}
