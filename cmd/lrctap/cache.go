package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mkowalczyk.dev/lrctap/internal/cache"
)

var (
	// flags for cache list
	cacheSortBy string
	// flags for cache clear
	cacheConfirm bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "manage the lyrics cache",
	Long:  `manage cached lyrics data, including viewing statistics, listing entries, and clearing the cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show cache statistics",
	Long:  `display cache statistics including number of entries, total size, and cache location.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		diskCache := cache.Global()

		count, sizeBytes, err := diskCache.Stats()
		if err != nil {
			return fmt.Errorf("failed to get cache stats: %w", err)
		}

		location := diskCache.Dir()
		if location == "" {
			location = "(memory only)"
		}

		fmt.Println("cache statistics:")
		fmt.Printf("  location: %s\n", location)
		fmt.Printf("  entries:  %d\n", count)
		fmt.Printf("  size:     %s\n", formatBytes(sizeBytes))

		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "list all cached songs",
	Long:  `list all songs in the cache with their lyric type and cache date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		diskCache := cache.Global()

		entries, err := diskCache.List()
		if err != nil {
			return fmt.Errorf("failed to list cache: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}

		sortCacheEntries(entries, cacheSortBy)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ARTIST\tTITLE\tLYRICS\tCACHED")

		for _, entry := range entries {
			kind := "plain"
			switch {
			case entry.Instrumental:
				kind = "instrumental"
			case entry.SyncedLyrics != "":
				kind = "synced"
			case entry.PlainLyrics == "":
				kind = "none"
			}
			cacheDate := time.Unix(entry.CreatedAt, 0).Format("2006-01-02")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.ArtistName, entry.TrackName, kind, cacheDate)
		}

		w.Flush()

		fmt.Printf("\ntotal: %d songs\n", len(entries))

		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <artist> <title>",
	Short: "show cached entry for a specific song",
	Long:  `display detailed information about a cached song including its lyrics.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		artist := args[0]
		title := args[1]

		diskCache := cache.Global()
		entry, err := diskCache.Get(artist, title)
		if err != nil {
			suggestions := findSimilarCachedSongs(diskCache, artist, title)
			if len(suggestions) > 0 {
				fmt.Fprintf(os.Stderr, "song not found in cache\n\n")
				fmt.Fprintf(os.Stderr, "did you mean one of these?\n")
				for _, s := range suggestions {
					fmt.Fprintf(os.Stderr, "  %s - %s\n", s.ArtistName, s.TrackName)
				}
				return fmt.Errorf("")
			}
			return fmt.Errorf("song not found in cache: %w", err)
		}

		fmt.Printf("artist:       %s\n", entry.ArtistName)
		fmt.Printf("title:        %s\n", entry.TrackName)
		fmt.Printf("album:        %s\n", entry.AlbumName)
		fmt.Printf("duration:     %.1fs\n", entry.Duration)
		fmt.Printf("instrumental: %v\n", entry.Instrumental)
		fmt.Printf("cached:       %s\n", time.Unix(entry.CreatedAt, 0).Format("2006-01-02 15:04:05"))
		fmt.Printf("expires:      %s\n", time.Unix(entry.ExpiresAt, 0).Format("2006-01-02 15:04:05"))

		if entry.SyncedLyrics != "" {
			lines := strings.Split(entry.SyncedLyrics, "\n")
			fmt.Printf("\nsynced lyrics: %d lines\n", len(lines))
		} else if entry.PlainLyrics != "" {
			lines := strings.Split(entry.PlainLyrics, "\n")
			fmt.Printf("\nplain lyrics: %d lines (no sync data)\n", len(lines))
		} else {
			fmt.Println("\nno lyrics available")
		}

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "clear all cached entries",
	Long:  `remove all cached lyrics data. use --confirm to skip the confirmation prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		diskCache := cache.Global()

		if !cacheConfirm {
			fmt.Print("are you sure you want to clear all cache? (y/n): ")
			var response string
			fmt.Scanln(&response)
			if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
				fmt.Println("cancelled")
				return nil
			}
		}

		if err := diskCache.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("cache cleared successfully")
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "remove expired cache entries",
	Long:  `remove all expired cache entries to free up disk space.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		diskCache := cache.Global()

		pruned, err := diskCache.Prune()
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}

		fmt.Printf("removed %d expired entries\n", pruned)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <artist> <title>",
	Short: "remove a specific song from the cache",
	Long:  `remove a specific song from the cache by artist and title.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		artist := args[0]
		title := args[1]

		diskCache := cache.Global()

		// verify it exists first
		if _, err := diskCache.Get(artist, title); err != nil {
			suggestions := findSimilarCachedSongs(diskCache, artist, title)
			if len(suggestions) > 0 {
				fmt.Fprintf(os.Stderr, "song not found in cache\n\n")
				fmt.Fprintf(os.Stderr, "did you mean one of these?\n")
				for _, s := range suggestions {
					fmt.Fprintf(os.Stderr, "  %s - %s\n", s.ArtistName, s.TrackName)
				}
				return fmt.Errorf("")
			}
			return fmt.Errorf("song not found in cache")
		}

		if err := diskCache.Delete(artist, title); err != nil {
			return fmt.Errorf("failed to delete from cache: %w", err)
		}

		fmt.Printf("deleted '%s - %s' from cache\n", artist, title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)

	// flags for cache list
	cacheListCmd.Flags().StringVar(&cacheSortBy, "sort", "date", "sort by: date, artist, title")

	// flags for cache clear
	cacheClearCmd.Flags().BoolVar(&cacheConfirm, "confirm", false, "skip confirmation prompt")
}

// helper functions

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func sortCacheEntries(entries []*cache.Entry, sortBy string) {
	switch sortBy {
	case "artist":
		sort.Slice(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].ArtistName) < strings.ToLower(entries[j].ArtistName)
		})
	case "title":
		sort.Slice(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].TrackName) < strings.ToLower(entries[j].TrackName)
		})
	case "date":
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].CreatedAt > entries[j].CreatedAt
		})
	}
}

func findSimilarCachedSongs(diskCache *cache.DiskCache, artist string, title string) []*cache.Entry {
	allEntries, err := diskCache.List()
	if err != nil || len(allEntries) == 0 {
		return nil
	}

	var matches []*cache.Entry
	artistLower := strings.ToLower(artist)
	titleLower := strings.ToLower(title)

	// first pass: exact artist match with fuzzy title
	for _, entry := range allEntries {
		if strings.ToLower(entry.ArtistName) == artistLower {
			entryTitleLower := strings.ToLower(entry.TrackName)
			if strings.Contains(entryTitleLower, titleLower) || strings.Contains(titleLower, entryTitleLower) {
				matches = append(matches, entry)
			}
		}
	}

	if len(matches) > 0 {
		if len(matches) > 5 {
			matches = matches[:5]
		}
		return matches
	}

	// second pass: fuzzy artist match with fuzzy title
	for _, entry := range allEntries {
		entryArtistLower := strings.ToLower(entry.ArtistName)
		entryTitleLower := strings.ToLower(entry.TrackName)

		artistMatch := strings.Contains(entryArtistLower, artistLower) || strings.Contains(artistLower, entryArtistLower)
		titleMatch := strings.Contains(entryTitleLower, titleLower) || strings.Contains(titleLower, entryTitleLower)

		if artistMatch && titleMatch {
			matches = append(matches, entry)
		}
	}

	if len(matches) > 5 {
		matches = matches[:5]
	}

	return matches
}
