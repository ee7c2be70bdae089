package main

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"mkowalczyk.dev/lrctap/internal/colors"
	"mkowalczyk.dev/lrctap/internal/lrc"
	"mkowalczyk.dev/lrctap/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover and inspect mpris-compatible media players on the session bus.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	Long:  `list all mpris-compatible media players currently running, marking the one the editor would follow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		session := player.NewSession(cfg.Players)
		services, err := session.Discover()
		if err != nil {
			return fmt.Errorf("failed to reach the session bus: %w", err)
		}

		if len(services) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck that your media player is running and supports mpris")
			return nil
		}

		// connecting tells us which service the editor would follow
		picked := ""
		if err := session.Connect(); err == nil {
			picked = session.Service()
		}

		bus, busErr := dbus.ConnectSessionBus()
		if busErr == nil {
			defer bus.Close()
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(services))
		for _, service := range services {
			line := "  " + service
			if busErr == nil {
				if identity := playerIdentity(bus, service); identity != "" {
					line += fmt.Sprintf(" (%s)", identity)
				}
			}
			if service == picked {
				line += "  *"
			}
			fmt.Println(line)
		}

		fmt.Println("\n* the player the editor would follow; use --player to prefer another")

		return nil
	},
}

var playerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "show the connected player and its track",
	Long:  `connect to an mpris player and display its playback status, current track, and lyrics file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		session := player.NewSession(cfg.Players)
		if err := session.Connect(); err != nil {
			return fmt.Errorf("no mpris player found: %w", err)
		}

		service := session.Service()
		fmt.Printf("player: %s\n", player.ShortName(service))

		if bus, err := dbus.ConnectSessionBus(); err == nil {
			defer bus.Close()
			if identity := playerIdentity(bus, service); identity != "" {
				fmt.Printf("identity: %s\n", identity)
			}
		}

		snap := session.Poll()
		fmt.Printf("status: %s\n", strings.ToLower(string(snap.Status)))

		trk, err := session.Track()
		if err != nil || trk == nil || !trk.IsValid() {
			fmt.Println("\nno track currently playing")
			return nil
		}

		fmt.Println("\ncurrent track:")
		fmt.Printf("  title:    %s\n", trk.Title)
		fmt.Printf("  artist:   %s\n", trk.Artist)
		if trk.Album != "" {
			fmt.Printf("  album:    %s\n", trk.Album)
		}
		if trk.DurationSecs > 0 {
			fmt.Printf("  duration: %s\n", colors.FormatTime(trk.DurationSecs))
		}
		if snap.Position >= 0 {
			fmt.Printf("  position: %s\n", colors.FormatTime(int64(snap.Position)))
		}
		if trk.ArtworkURL != "" {
			fmt.Printf("  artwork:  %s\n", trk.ArtworkURL)
		}

		if local := trk.LocalPath(); local != "" {
			lrcPath := lrc.PathForAudio(local)
			doc, err := lrc.Load(lrcPath)
			if err == nil && !isBlank(doc) {
				fmt.Printf("  lyrics:   %s (%d/%d synced)\n", lrcPath, doc.SyncedCount(), doc.Len())
			} else {
				fmt.Printf("  lyrics:   %s (not written yet)\n", lrcPath)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerStatusCmd)
}

// helper functions

func playerIdentity(bus *dbus.Conn, serviceName string) string {
	obj := bus.Object(serviceName, "/org/mpris/MediaPlayer2")
	variant, err := obj.GetProperty("org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return ""
	}

	identity, ok := variant.Value().(string)
	if !ok {
		return ""
	}

	return identity
}
