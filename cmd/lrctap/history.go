package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mkowalczyk.dev/lrctap/internal/history"
)

var (
	// flags for history
	historyLimit int
	historyPath  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list recent editing sessions",
	Long:  `list recent saves from the editor: which lyrics files were worked on, when, and how far along the sync got.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		if cfg.HistoryDB == "" {
			return fmt.Errorf("session history is disabled (no history db path configured)")
		}

		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history db: %w", err)
		}
		defer store.Close()

		var saves []history.Save
		if historyPath != "" {
			abs, err := filepath.Abs(historyPath)
			if err != nil {
				abs = historyPath
			}
			saves, err = store.ForPath(abs)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
		} else {
			saves, err = store.Recent(historyLimit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
		}

		if len(saves) == 0 {
			fmt.Println("no sessions recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SAVED\tTRACK\tSYNCED\tFILE")

		for _, save := range saves {
			trackCol := save.TrackTitle
			if save.TrackArtist != "" {
				trackCol = save.TrackArtist + " - " + save.TrackTitle
			}
			if trackCol == "" {
				trackCol = filepath.Base(save.LrcPath)
			}

			syncedCol := fmt.Sprintf("%d/%d", save.LinesSynced, save.LinesTotal)
			if save.Complete() {
				syncedCol += " ✓"
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				save.SavedAt.Format("2006-01-02 15:04"),
				trackCol,
				syncedCol,
				save.LrcPath,
			)
		}

		w.Flush()

		fmt.Printf("\ntotal: %d session(s)\n", len(saves))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of sessions to show")
	historyCmd.Flags().StringVar(&historyPath, "path", "", "only show sessions for this .lrc file")
}
