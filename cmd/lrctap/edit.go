package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mkowalczyk.dev/lrctap/internal/config"
	"mkowalczyk.dev/lrctap/internal/editor"
	"mkowalczyk.dev/lrctap/internal/history"
	"mkowalczyk.dev/lrctap/internal/lrc"
	"mkowalczyk.dev/lrctap/internal/lyrics"
	"mkowalczyk.dev/lrctap/internal/player"
	"mkowalczyk.dev/lrctap/internal/terminal"
	"mkowalczyk.dev/lrctap/internal/track"
	"mkowalczyk.dev/lrctap/internal/ui"
)

var editCmd = &cobra.Command{
	Use:   "edit [audio-file]",
	Short: "open the interactive lyrics editor",
	Long: `open the editor on the lyrics file next to the given audio file, or on
the lyrics for whatever the player is currently playing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEditor,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEditor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// restore the terminal even when killed mid-session
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGTSTP)

	go func() {
		<-sigChan
		cancel()
		terminal.Reset()
		os.Exit(0)
	}()

	defer terminal.Reset()

	cfg := loadConfig(cmd)

	if logPath := config.DebugLogPath(); logPath != "" {
		f, err := tea.LogToFile(logPath, "debug")
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open debug log: %v\n", err)
		} else {
			defer f.Close()
		}
	}

	session := player.NewSession(cfg.Players)
	if err := session.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not watch dbus signals: %v\n", err)
	}
	defer session.Stop()

	// an explicit audio file wins; otherwise follow the playing track
	audioPath := ""
	if len(args) > 0 {
		audioPath = args[0]
	} else if trk := session.CurrentTrack(); trk != nil {
		audioPath = trk.LocalPath()
	}

	var doc *lrc.Document
	if audioPath != "" {
		lrcPath := lrc.PathForAudio(audioPath)
		loaded, err := lrc.Load(lrcPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		doc = loaded

		// brand new file: seed it with lrclib lyrics so the user stamps
		// lines instead of typing them
		if isBlank(doc) {
			if seeded := seedFromLrclib(ctx, cfg, session.CurrentTrack()); seeded != nil {
				seeded.SetPath(lrcPath)
				doc = seeded
			}
		}
	} else {
		doc = lrc.New()
	}

	ctrl := editor.NewController(session, doc)

	var store *history.Store
	if cfg.HistoryDB != "" {
		opened, err := history.Open(cfg.HistoryDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: session history disabled: %v\n", err)
		} else {
			store = opened
			defer store.Close()
		}
	}

	model := ui.NewModel(ui.ModelConfig{
		Controller:   ctrl,
		Playback:     session,
		History:      store,
		AudioPath:    audioPath,
		PollInterval: cfg.PollInterval.Std(),
		SyncInterval: cfg.SyncInterval.Std(),
		SeekStep:     cfg.SeekStep,
		HideHeader:   cfg.HideHeader,
		TermCaps:     terminal.DetectCapabilities(),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}

// loadConfig layers the persistent flags over the file and environment config.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if playerName != "" {
		cfg.Players = append([]string{playerName}, cfg.Players...)
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if cmd.Flags().Changed("hide-header") {
		cfg.HideHeader = hideHeader
	}
	if cmd.Flags().Changed("history-db") {
		cfg.HistoryDB = historyDB
	}
	if cmd.Flags().Changed("seek-step") {
		cfg.SeekStep = seekStep
	}

	return cfg
}

func isBlank(doc *lrc.Document) bool {
	return doc.Len() == 1 && doc.At(0).Text == "" && !doc.At(0).Synced()
}

// seedFromLrclib fetches plain lyrics for the playing track and turns them
// into an unsynced document. Best effort: any failure just means starting
// from an empty file.
func seedFromLrclib(ctx context.Context, cfg *config.Config, trk *track.Info) *lrc.Document {
	if trk == nil || !trk.IsValid() {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	fmt.Fprintf(os.Stderr, "fetching lyrics for %s - %s...\n", trk.Artist, trk.Title)

	lyricsData, err := lyrics.Fetch(fetchCtx, cfg.LrclibURL, &lyrics.TrackParams{
		Title:        trk.Title,
		Artist:       trk.Artist,
		Album:        trk.Album,
		DurationSecs: trk.DurationSecs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "no seed lyrics: %v\n", err)
		return nil
	}

	text := lyricsData.PlainLyrics
	if text == "" && lyricsData.SyncedLyrics != "" {
		// only timed lyrics available; strip the tags and let the user
		// stamp their own
		var b strings.Builder
		for _, line := range lyrics.ParseSynced(lyricsData.SyncedLyrics) {
			b.WriteString(line.Text)
			b.WriteByte('\n')
		}
		text = b.String()
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc := lrc.FromText(text)
	fmt.Fprintf(os.Stderr, "seeded %d lines from lrclib\n", doc.Len())
	return doc
}
