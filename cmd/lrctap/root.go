package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	playerName string
	lrclibURL  string
	hideHeader bool
	historyDB  string
	seekStep   float64
)

var rootCmd = &cobra.Command{
	Use:   "lrctap [audio-file]",
	Short: "tap out timestamps for .lrc lyric files",
	Long: `lrctap is a terminal editor for synchronized .lrc lyric files.

it follows the playback position of an mpris media player and stamps
the current position onto lyric lines as the song plays, so a whole
file can be timed in a single listen.

when run without a subcommand, it opens the editor on the lyrics for
the given audio file, or for whatever is currently playing.`,
	Version:       "1.0.0",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// default behavior: open the editor
		return runEditor(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&playerName, "player", "p", "", "preferred mpris player (e.g. audacious, vlc)")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url")
	rootCmd.PersistentFlags().BoolVarP(&hideHeader, "hide-header", "H", false, "hide the track header in the editor")
	rootCmd.PersistentFlags().StringVar(&historyDB, "history-db", "", "path to the session history database")
	rootCmd.PersistentFlags().Float64Var(&seekStep, "seek-step", 0, "seconds moved per seek keypress")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
