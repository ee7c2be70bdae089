// Package ui is the terminal editor screen: a bubbletea program that renders
// the lyrics document next to live playback state and turns keystrokes into
// editor and player commands.
package ui

import (
	"image"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"mkowalczyk.dev/lrctap/internal/artwork"
	"mkowalczyk.dev/lrctap/internal/editor"
	"mkowalczyk.dev/lrctap/internal/history"
	"mkowalczyk.dev/lrctap/internal/player"
	"mkowalczyk.dev/lrctap/internal/terminal"
	"mkowalczyk.dev/lrctap/internal/track"
)

// Playback is the slice of the player session the editor screen drives.
type Playback interface {
	Poll() player.Snapshot
	SeekBy(deltaSeconds float64) player.SeekResult
	Restart() player.SeekResult
	CurrentTrack() *track.Info
	Events() <-chan player.Event
	Service() string
}

type TickMsg time.Time

// SyncTickMsg drives the slower cadence that follows playback in sync mode.
type SyncTickMsg time.Time

type PlayerEventMsg struct {
	Event player.Event
}

type ArtworkFetchedMsg struct {
	Image   image.Image
	Palette *artwork.Palette
	Err     error
}

type Model struct {
	ctrl     *editor.Controller
	playback Playback
	store    *history.Store

	audioPath    string
	pollInterval time.Duration
	syncInterval time.Duration
	seekStep     float64
	hideHeader   bool
	termCaps     *terminal.Capabilities

	current  *track.Info
	snapshot player.Snapshot

	artworkImage image.Image
	palette      *artwork.Palette
	halfBlockArt []string
	kittyArt     string

	statusText string
	statusAt   time.Time

	keys keyMap
	help help.Model

	width     int
	height    int
	tickCount int
	quitting  bool
}

type ModelConfig struct {
	Controller *editor.Controller
	Playback   Playback
	History    *history.Store
	AudioPath  string

	PollInterval time.Duration
	SyncInterval time.Duration
	SeekStep     float64
	HideHeader   bool
	TermCaps     *terminal.Capabilities
}

func NewModel(cfg ModelConfig) Model {
	h := help.New()
	h.ShortSeparator = "  "
	dimmed := lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	h.Styles.ShortKey = dimmed
	h.Styles.ShortDesc = dimmed
	h.Styles.FullKey = dimmed
	h.Styles.FullDesc = dimmed

	m := Model{
		ctrl:         cfg.Controller,
		playback:     cfg.Playback,
		store:        cfg.History,
		audioPath:    cfg.AudioPath,
		pollInterval: cfg.PollInterval,
		syncInterval: cfg.SyncInterval,
		seekStep:     cfg.SeekStep,
		hideHeader:   cfg.HideHeader,
		termCaps:     cfg.TermCaps,
		palette:      artwork.DefaultPalette(),
		keys:         defaultKeyMap(),
		help:         h,
	}

	if cfg.PollInterval <= 0 {
		m.pollInterval = 100 * time.Millisecond
	}
	if cfg.SyncInterval <= 0 {
		m.syncInterval = time.Second
	}
	if cfg.SeekStep <= 0 {
		m.seekStep = 5
	}

	if m.playback != nil {
		m.current = m.playback.CurrentTrack()
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.tickCmd(),
		m.syncTickCmd(),
		m.listenForPlayerEvents(),
	}

	if !m.hideHeader && m.current != nil && m.current.ArtworkURL != "" {
		cmds = append(cmds, fetchArtworkCmd(m.current.ArtworkURL))
	}

	return tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) syncTickCmd() tea.Cmd {
	return tea.Tick(m.syncInterval, func(t time.Time) tea.Msg {
		return SyncTickMsg(t)
	})
}

func (m Model) listenForPlayerEvents() tea.Cmd {
	if m.playback == nil {
		return nil
	}

	events := m.playback.Events()
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return PlayerEventMsg{Event: event}
	}
}

func (m *Model) setStatus(text string) {
	m.statusText = text
	m.statusAt = time.Now()
}

// artSize picks the cover art cell size for the current terminal width.
func (m Model) artSize() (int, int) {
	switch {
	case m.width >= 100:
		return 12, 6
	case m.width >= 70:
		return 8, 4
	default:
		return 0, 0
	}
}

// refreshArtCache re-renders the cached art block for the current size and
// terminal capabilities. Rendering per frame would dominate the draw time.
func (m *Model) refreshArtCache() {
	w, h := m.artSize()
	if m.artworkImage == nil || w == 0 || m.hideHeader {
		m.halfBlockArt = nil
		m.kittyArt = ""
		return
	}

	if m.termCaps != nil && m.termCaps.SupportsKittyGraphics {
		m.kittyArt = terminal.EncodeImageForKitty(m.artworkImage, w, h)
		m.halfBlockArt = nil
		return
	}

	m.halfBlockArt = artwork.RenderHalfBlockArt(m.artworkImage, w, h)
	m.kittyArt = ""
}

func (m Model) Width() int                { return m.width }
func (m Model) Height() int               { return m.height }
func (m Model) Track() *track.Info        { return m.current }
func (m Model) Snapshot() player.Snapshot { return m.snapshot }
func (m Model) Palette() *artwork.Palette { return m.palette }
func (m Model) Status() string            { return m.statusText }
func (m Model) IsQuitting() bool          { return m.quitting }
