// Package editor drives the synchronization core: matching playback position
// against the document's timestamps, and the Edit/Sync mode machine deciding
// whether the cursor follows keystrokes or the player.
package editor

import (
	"math"
	"sync"
	"time"

	"mkowalczyk.dev/lrctap/internal/lrc"
	"mkowalczyk.dev/lrctap/internal/track"
)

// Transport is the slice of the player session the controller needs:
// a position poll and the currently playing track.
type Transport interface {
	Position() float64
	CurrentTrack() *track.Info
}

type Mode int

const (
	ModeEdit Mode = iota
	ModeSync
)

func (m Mode) String() string {
	if m == ModeSync {
		return "sync"
	}
	return "edit"
}

// Mark remembers the last inserted timestamp and when it was inserted, so
// the UI can show a locally extrapolated elapsed value between polls. It is
// display-only: sync decisions always re-poll the real position.
type Mark struct {
	Seconds float64
	At      time.Time
}

func (m Mark) Valid() bool {
	return !m.At.IsZero()
}

// Current extrapolates the marked position to now by adding the wall-clock
// time elapsed since the mark.
func (m Mark) Current(now time.Time) float64 {
	if !m.Valid() {
		return 0
	}
	return m.Seconds + now.Sub(m.At).Seconds()
}

// ClosestLine finds the index of the timestamped line nearest to position.
// The scan is ascending and keeps the first minimum, so an exact distance
// tie resolves to the earliest line. Reports false when no line is stamped.
func ClosestLine(doc *lrc.Document, position float64) (int, bool) {
	best := -1
	bestDist := math.MaxFloat64

	for i := 0; i < doc.Len(); i++ {
		line := doc.At(i)
		if !line.Synced() {
			continue
		}
		dist := math.Abs(line.Time - position)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// Controller composes the transport and the document. The mutex is the
// single boundary serializing cursor mutation between the periodic
// autonomous sync and the explicit jump command, which can fire together.
type Controller struct {
	transport Transport

	mu       sync.Mutex
	doc      *lrc.Document
	mode     Mode
	lastMark Mark
}

// NewController starts in Edit mode on the given document.
func NewController(transport Transport, doc *lrc.Document) *Controller {
	if doc == nil {
		doc = lrc.New()
	}
	return &Controller{transport: transport, doc: doc}
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Document exposes the current document for rendering and direct edits from
// the foreground loop. Reload swaps it, so callers must not retain it across
// commands.
func (c *Controller) Document() *lrc.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

func (c *Controller) SetDocument(doc *lrc.Document) {
	if doc == nil {
		doc = lrc.New()
	}
	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
}

func (c *Controller) LastMark() Mark {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMark
}

// MarkTimestamp stamps the cursor line with the player's current position.
// Without a usable position this is a no-op reporting false.
func (c *Controller) MarkTimestamp() bool {
	position := c.transport.Position()
	if position < 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.InsertTimestampAtCursor(position)
	c.lastMark = Mark{Seconds: position, At: time.Now()}
	return true
}

// ClearAtCursor removes the cursor line's timestamp, or the line itself
// when it is empty.
func (c *Controller) ClearAtCursor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.ClearTimestampOrDeleteAtCursor()
}

// Move shifts the cursor by delta within document bounds.
func (c *Controller) Move(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.MoveCursor(delta)
}

// TrySyncPosition polls the player and moves the cursor to the closest
// timestamped line. It is a no-op returning false while the position is
// unavailable, no line is stamped, or the cursor is already there.
func (c *Controller) TrySyncPosition() bool {
	position := c.transport.Position()
	if position < 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	index, ok := ClosestLine(c.doc, position)
	if !ok {
		return false
	}
	if index == c.doc.Cursor() {
		return false
	}
	c.doc.SetCursor(index)
	return true
}

// AutoSync runs the periodic sync tick. Outside Sync mode it does nothing.
func (c *Controller) AutoSync() bool {
	if c.Mode() != ModeSync {
		return false
	}
	return c.TrySyncPosition()
}

// JumpToClosest is the explicit user command behind TrySyncPosition; unlike
// the autonomous tick it works in either mode.
func (c *Controller) JumpToClosest() bool {
	return c.TrySyncPosition()
}

// ToggleMode flips between Edit and Sync and reloads the document from the
// playing track's lyrics file. Unsaved edits are discarded by the reload;
// that is long-standing observed behavior, kept deliberately.
func (c *Controller) ToggleMode() Mode {
	c.mu.Lock()
	if c.mode == ModeEdit {
		c.mode = ModeSync
	} else {
		c.mode = ModeEdit
	}
	mode := c.mode
	c.mu.Unlock()

	c.Reload()
	return mode
}

// Reload replaces the document with the one belonging to the playing
// track. With no playing track (or no local file) the current document is
// kept; a missing or unreadable file yields a fresh empty document.
func (c *Controller) Reload() bool {
	path := c.TrackLyricsPath()
	if path == "" {
		return false
	}

	doc, _ := lrc.Load(path)
	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
	return true
}

// TrackLyricsPath resolves the lyrics file for the playing track, or ""
// when the track is unknown or not a local file.
func (c *Controller) TrackLyricsPath() string {
	info := c.transport.CurrentTrack()
	if info == nil {
		return ""
	}
	audio := info.LocalPath()
	if audio == "" {
		return ""
	}
	return lrc.PathForAudio(audio)
}

// Modified reports whether the document has unsaved content changes.
func (c *Controller) Modified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Modified()
}

// Save persists the document to its file.
func (c *Controller) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Save()
}
