package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mkowalczyk.dev/lrctap/internal/cache"
	"mkowalczyk.dev/lrctap/internal/config"
	"mkowalczyk.dev/lrctap/internal/lyrics"
	"mkowalczyk.dev/lrctap/internal/player"
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyrics search and management",
	Long:  `search lrclib.net for lyrics, pre-fetch them to the cache, or preview them in the terminal. with no arguments, the subcommands use whatever the player is currently playing.`,
}

var lyricsSearchCmd = &cobra.Command{
	Use:   "search [artist] [title]",
	Short: "search for lyrics on lrclib",
	Long:  `search for lyrics on lrclib.net and display availability information.`,
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		params, err := resolveTrackParams(cfg, args)
		if err != nil {
			return err
		}

		fmt.Printf("searching for: %s - %s\n\n", params.Artist, params.Title)

		lyricsData, err := lyrics.Fetch(context.Background(), cfg.LrclibURL, params)
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}

		fmt.Printf("found lyrics:\n")
		fmt.Printf("  track:        %s\n", lyricsData.TrackName)
		fmt.Printf("  artist:       %s\n", lyricsData.ArtistName)
		if lyricsData.AlbumName != "" {
			fmt.Printf("  album:        %s\n", lyricsData.AlbumName)
		}
		if lyricsData.Duration > 0 {
			fmt.Printf("  duration:     %.0fs\n", lyricsData.Duration)
		}
		fmt.Printf("  instrumental: %v\n", lyricsData.Instrumental)

		if lyricsData.SyncedLyrics != "" {
			lines := strings.Split(lyricsData.SyncedLyrics, "\n")
			fmt.Printf("  synced lines: %d\n", len(lines))
		} else {
			fmt.Printf("  synced lines: none\n")
		}

		if lyricsData.PlainLyrics != "" {
			lines := strings.Split(lyricsData.PlainLyrics, "\n")
			fmt.Printf("  plain lines:  %d\n", len(lines))
		} else {
			fmt.Printf("  plain lines:  none\n")
		}

		fmt.Println("\nuse 'lrctap lyrics preview' to read them")

		return nil
	},
}

var lyricsFetchCmd = &cobra.Command{
	Use:   "fetch [artist] [title]",
	Short: "pre-fetch and cache lyrics",
	Long:  `fetch lyrics from lrclib.net and save them to the local cache for instant seeding later.`,
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		params, err := resolveTrackParams(cfg, args)
		if err != nil {
			return err
		}

		// check if already cached
		diskCache := cache.Global()
		cached, err := diskCache.Get(params.Artist, params.Title)
		if err == nil && cached != nil {
			fmt.Printf("'%s - %s' is already cached\n", params.Artist, params.Title)
			return nil
		}

		fmt.Printf("fetching: %s - %s\n", params.Artist, params.Title)

		lyricsData, err := lyrics.Fetch(context.Background(), cfg.LrclibURL, params)
		if err != nil {
			return fmt.Errorf("failed to fetch lyrics: %w", err)
		}

		if lyricsData.SyncedLyrics == "" && lyricsData.PlainLyrics == "" {
			return fmt.Errorf("no lyrics available for this song")
		}

		fmt.Printf("cached successfully: %s - %s\n", lyricsData.ArtistName, lyricsData.TrackName)
		if lyricsData.SyncedLyrics != "" {
			fmt.Println("synced lyrics available")
		} else {
			fmt.Println("only plain lyrics available (no timing)")
		}

		return nil
	},
}

var lyricsPreviewCmd = &cobra.Command{
	Use:   "preview [artist] [title]",
	Short: "preview lyrics in the terminal",
	Long:  `display lyrics in the terminal with timestamps (if available).`,
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		params, err := resolveTrackParams(cfg, args)
		if err != nil {
			return err
		}

		// try cache first
		diskCache := cache.Global()
		cached, err := diskCache.Get(params.Artist, params.Title)

		var lyricsData *lyrics.LrclibResponse

		if err == nil && cached != nil {
			lyricsData = &lyrics.LrclibResponse{
				TrackName:    cached.TrackName,
				ArtistName:   cached.ArtistName,
				AlbumName:    cached.AlbumName,
				Duration:     cached.Duration,
				Instrumental: cached.Instrumental,
				PlainLyrics:  cached.PlainLyrics,
				SyncedLyrics: cached.SyncedLyrics,
			}
			fmt.Println("(from cache)")
		} else {
			lyricsData, err = lyrics.Fetch(context.Background(), cfg.LrclibURL, params)
			if err != nil {
				suggestions := findSimilarCachedSongs(diskCache, params.Artist, params.Title)
				if len(suggestions) > 0 {
					fmt.Fprintf(os.Stderr, "lyrics not found online\n\n")
					fmt.Fprintf(os.Stderr, "similar songs in cache:\n")
					for _, s := range suggestions {
						fmt.Fprintf(os.Stderr, "  %s - %s\n", s.ArtistName, s.TrackName)
					}
					return fmt.Errorf("")
				}
				return fmt.Errorf("lyrics not found: %w", err)
			}
		}

		fmt.Printf("\n%s - %s\n", lyricsData.ArtistName, lyricsData.TrackName)
		if lyricsData.AlbumName != "" {
			fmt.Printf("%s\n", lyricsData.AlbumName)
		}
		fmt.Println(strings.Repeat("─", 60))

		if lyricsData.Instrumental {
			fmt.Println("\n[instrumental]")
			return nil
		}

		if lyricsData.SyncedLyrics != "" {
			lines := lyrics.ParseSynced(lyricsData.SyncedLyrics)
			if len(lines) == 0 {
				fmt.Println("\nno valid synced lyrics found")
				return nil
			}

			fmt.Printf("\nsynced lyrics (%d lines):\n\n", len(lines))
			for _, line := range lines {
				fmt.Printf("[%s] %s\n", formatTimestamp(line.TimeSeconds), line.Text)
			}
		} else if lyricsData.PlainLyrics != "" {
			fmt.Println("\nplain lyrics (no timestamps):")
			fmt.Println()
			fmt.Println(lyricsData.PlainLyrics)
		} else {
			fmt.Println("\nno lyrics available")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.AddCommand(lyricsSearchCmd)
	lyricsCmd.AddCommand(lyricsFetchCmd)
	lyricsCmd.AddCommand(lyricsPreviewCmd)
}

// helper functions

// resolveTrackParams turns positional args into lrclib query params, falling
// back to whatever the player is currently playing when none are given.
func resolveTrackParams(cfg *config.Config, args []string) (*lyrics.TrackParams, error) {
	switch len(args) {
	case 2:
		return &lyrics.TrackParams{Artist: args[0], Title: args[1]}, nil
	case 0:
		// fall through to the player
	default:
		return nil, fmt.Errorf("give both an artist and a title, or neither to use the playing track")
	}

	session := player.NewSession(cfg.Players)
	if err := session.Connect(); err != nil {
		return nil, fmt.Errorf("no track named and no mpris player found: %w", err)
	}

	trk := session.CurrentTrack()
	if trk == nil || !trk.IsValid() {
		return nil, fmt.Errorf("no track named and nothing is playing")
	}

	return &lyrics.TrackParams{
		Title:        trk.Title,
		Artist:       trk.Artist,
		Album:        trk.Album,
		DurationSecs: trk.DurationSecs,
	}, nil
}

func formatTimestamp(seconds float64) string {
	minutes := int(seconds) / 60
	secs := seconds - float64(minutes*60)
	return fmt.Sprintf("%d:%05.2f", minutes, secs)
}
