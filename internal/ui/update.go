package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"mkowalczyk.dev/lrctap/internal/artwork"
	"mkowalczyk.dev/lrctap/internal/editor"
	"mkowalczyk.dev/lrctap/internal/history"
	"mkowalczyk.dev/lrctap/internal/player"
	"mkowalczyk.dev/lrctap/internal/track"
)

// statusTTL is how long a transient status message stays on screen.
const statusTTL = 4 * time.Second

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refreshArtCache()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case PlayerEventMsg:
		return m.handlePlayerEvent(msg.Event)

	case ArtworkFetchedMsg:
		return m.handleArtworkFetched(msg)

	case TickMsg:
		return m.handleTick()

	case SyncTickMsg:
		return m.handleSyncTick()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Quit):
		return m.quitAndSave()

	case key.Matches(msg, m.keys.Mark):
		if !m.ctrl.MarkTimestamp() {
			m.setStatus("no playback position; is the player playing?")
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.ClearAtCursor()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.ctrl.Move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.ctrl.Move(1)
		return m, nil

	case key.Matches(msg, m.keys.SeekBack):
		return m.seekBy(-m.seekStep)

	case key.Matches(msg, m.keys.SeekForward):
		return m.seekBy(m.seekStep)

	case key.Matches(msg, m.keys.Restart):
		if m.playback == nil {
			m.setStatus("no player connected")
			return m, nil
		}
		if m.playback.Restart() == player.SeekUnavailable {
			m.setStatus("player does not respond to seeking")
		} else {
			m.setStatus("restarted from the top")
		}
		return m, nil

	case key.Matches(msg, m.keys.Jump):
		if !m.ctrl.JumpToClosest() {
			m.setStatus("no timestamped lines to jump to")
		}
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		mode := m.ctrl.ToggleMode()
		if mode == editor.ModeSync {
			m.setStatus("sync mode: cursor follows playback (document reloaded)")
		} else {
			m.setStatus("edit mode (document reloaded)")
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m.saveDocument()

	case key.Matches(msg, m.keys.Reload):
		if m.ctrl.Reload() {
			m.setStatus("reloaded " + filepath.Base(m.ctrl.Document().Path()))
		} else {
			m.setStatus("no lyrics file known for the current track")
		}
		return m, nil

	case key.Matches(msg, m.keys.Yank):
		doc := m.ctrl.Document()
		line := doc.At(doc.Cursor())
		if err := clipboard.WriteAll(line.Text); err != nil {
			m.setStatus("clipboard unavailable: " + err.Error())
		} else {
			m.setStatus("copied line to clipboard")
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

func (m Model) seekBy(delta float64) (tea.Model, tea.Cmd) {
	if m.playback == nil {
		m.setStatus("no player connected")
		return m, nil
	}

	switch m.playback.SeekBy(delta) {
	case player.SeekClamped:
		m.setStatus("seeked to the start of the track")
	case player.SeekUnavailable:
		m.setStatus("player does not respond to seeking")
	}
	return m, nil
}

// saveDocument writes the file and logs the result to history. Both happen on
// the update loop: the write is a single small file and a save is always an
// explicit keystroke.
func (m Model) saveDocument() (tea.Model, tea.Cmd) {
	doc := m.ctrl.Document()
	total := doc.Len()
	synced := doc.SyncedCount()
	path := doc.Path()

	if err := m.ctrl.Save(); err != nil {
		m.setStatus("save failed: " + err.Error())
		return m, nil
	}

	m.setStatus(fmt.Sprintf("saved %s (%d/%d lines synced)", filepath.Base(path), synced, total))
	m.recordSave(path, total, synced)
	return m, nil
}

func (m Model) quitAndSave() (tea.Model, tea.Cmd) {
	doc := m.ctrl.Document()
	if !m.ctrl.Modified() {
		m.quitting = true
		return m, tea.Quit
	}

	if doc.Path() == "" {
		m.setStatus("no file path to save to (ctrl+c quits without saving)")
		return m, nil
	}

	total := doc.Len()
	synced := doc.SyncedCount()
	path := doc.Path()

	if err := m.ctrl.Save(); err != nil {
		m.setStatus("save failed: " + err.Error() + " (ctrl+c quits without saving)")
		return m, nil
	}

	m.recordSave(path, total, synced)
	m.quitting = true
	return m, tea.Quit
}

// recordSave logs the save to the local history database. History is an aid,
// not a dependency: failures never interrupt the editing session.
func (m Model) recordSave(lrcPath string, total int, synced int) {
	if m.store == nil {
		return
	}

	save := history.Save{
		AudioPath:   m.audioPath,
		LrcPath:     lrcPath,
		LinesTotal:  total,
		LinesSynced: synced,
	}
	if m.current != nil {
		save.TrackTitle = m.current.Title
		save.TrackArtist = m.current.Artist
		if save.AudioPath == "" {
			save.AudioPath = m.current.LocalPath()
		}
	}
	if m.playback != nil {
		save.Player = player.ShortName(m.playback.Service())
	}

	_ = m.store.Record(save)
}

func (m Model) handlePlayerEvent(event player.Event) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	cmds = append(cmds, m.listenForPlayerEvents())

	switch event.Kind {
	case player.EventTrackChanged:
		return m.handleTrackChange(event.Track, cmds)

	case player.EventStatusChanged:
		if m.playback != nil {
			m.snapshot = m.playback.Poll()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleTrackChange(newTrack *track.Info, existingCmds []tea.Cmd) (tea.Model, tea.Cmd) {
	m.current = newTrack
	m.artworkImage = nil
	m.halfBlockArt = nil
	m.kittyArt = ""
	m.palette = artwork.DefaultPalette()

	if newTrack == nil || !newTrack.IsValid() {
		return m, tea.Batch(existingCmds...)
	}

	if m.ctrl.Mode() == editor.ModeSync {
		// sync mode follows the player across track changes; save first so
		// following never discards work
		if m.ctrl.Modified() && m.ctrl.Document().Path() != "" {
			if err := m.ctrl.Save(); err != nil {
				m.setStatus("save failed: " + err.Error() + "; keeping current document")
				return m, tea.Batch(existingCmds...)
			}
		}
		if m.ctrl.Reload() {
			m.setStatus("now editing " + newTrack.Title)
		}
	} else {
		m.setStatus("player moved to " + newTrack.Title + " (l loads its lyrics)")
	}

	if !m.hideHeader && newTrack.ArtworkURL != "" {
		existingCmds = append(existingCmds, fetchArtworkCmd(newTrack.ArtworkURL))
	}

	return m, tea.Batch(existingCmds...)
}

func (m Model) handleArtworkFetched(msg ArtworkFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.Image == nil {
		if m.palette == nil {
			m.palette = artwork.DefaultPalette()
		}
		return m, nil
	}

	m.artworkImage = msg.Image
	if msg.Palette != nil {
		m.palette = msg.Palette
	}
	m.refreshArtCache()

	// force a re-render so sections drawn before the fetch finished pick up
	// the new palette
	return m, func() tea.Msg {
		return struct{}{}
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.tickCount++

	if m.statusText != "" && time.Since(m.statusAt) > statusTTL {
		m.statusText = ""
	}

	if m.playback != nil {
		m.snapshot = m.playback.Poll()
	}

	return m, m.tickCmd()
}

func (m Model) handleSyncTick() (tea.Model, tea.Cmd) {
	m.ctrl.AutoSync()
	return m, m.syncTickCmd()
}

// fetchArtworkCmd downloads and analyzes cover art off the update loop. The
// palette extraction runs here too: kmeans over the image is far too slow to
// run between frames.
func fetchArtworkCmd(artworkURL string) tea.Cmd {
	return func() tea.Msg {
		img, err := artwork.Fetch(artworkURL)
		if err != nil {
			return ArtworkFetchedMsg{Err: err}
		}
		return ArtworkFetchedMsg{Image: img, Palette: artwork.ExtractPalette(img)}
	}
}
