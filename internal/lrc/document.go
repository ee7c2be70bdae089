// Package lrc models a timed-lyrics document: an ordered list of lines,
// each optionally stamped with a playback time, plus the edit cursor.
package lrc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PathForAudio maps an audio file path to its sibling lyrics file,
// e.g. /music/song.flac -> /music/song.lrc.
func PathForAudio(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".lrc"
}

// Line is one lyric line. Time is NoTimestamp while the line is unsynced;
// Text holds everything after the tag (or the whole raw line when unsynced,
// including any bracket prefix that failed to parse).
type Line struct {
	Time float64
	Text string
}

func (l Line) Synced() bool {
	return l.Time >= 0
}

// String renders the line back into its file form.
func (l Line) String() string {
	if !l.Synced() {
		return l.Text
	}
	return FormatTimestamp(l.Time) + l.Text
}

// Document owns the lines and the cursor. It is never empty: loading absent
// or blank content yields a single empty line. Content mutations set the
// modified flag; cursor motion does not.
type Document struct {
	path     string
	lines    []Line
	cursor   int
	modified bool
}

func New() *Document {
	return &Document{lines: []Line{{Time: NoTimestamp}}}
}

// FromText builds a document from raw text, typically fetched plain lyrics
// used to seed a not-yet-synced file.
func FromText(text string) *Document {
	d := New()
	d.lines = parseLines(text)
	return d
}

// Load reads the document at path. A missing file is not an error: editing
// starts from a single empty line. Any other read failure also yields a
// usable empty document, with the error reported so the caller can warn.
func Load(path string) (*Document, error) {
	d := New()
	d.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d, nil
		}
		return d, fmt.Errorf("failed to read %s: %w", path, err)
	}

	d.lines = parseLines(string(data))
	return d, nil
}

func parseLines(content string) []Line {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	// exactly one trailing newline terminates the last line rather than
	// opening a phantom empty one
	content = strings.TrimSuffix(content, "\n")

	raw := strings.Split(content, "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = parseLine(r)
	}
	return lines
}

func parseLine(raw string) Line {
	ts := ExtractTimestamp(raw)
	if ts == NoTimestamp {
		return Line{Time: NoTimestamp, Text: raw}
	}
	end := strings.Index(raw, "]")
	return Line{Time: ts, Text: raw[end+1:]}
}

// Text renders the whole document into its file form, one line per Line
// plus a trailing newline.
func (d *Document) Text() string {
	var b strings.Builder
	for _, line := range d.lines {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Save writes the document back to its path and clears the modified flag.
func (d *Document) Save() error {
	if d.path == "" {
		return errors.New("document has no file path")
	}

	err := os.WriteFile(d.path, []byte(d.Text()), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", d.path, err)
	}

	d.modified = false
	return nil
}

// InsertTimestampAtCursor stamps the current line with seconds, replacing an
// existing tag (or an unparseable bracket prefix) if present. The cursor then
// advances to the next line, appending a fresh empty line when the cursor was
// already on the last one.
func (d *Document) InsertTimestampAtCursor(seconds float64) {
	line := d.lines[d.cursor]
	if !line.Synced() {
		if stripped, ok := stripBracketPrefix(line.Text); ok {
			line.Text = stripped
		}
	}
	line.Time = seconds
	d.lines[d.cursor] = line

	if d.cursor == len(d.lines)-1 {
		d.lines = append(d.lines, Line{Time: NoTimestamp})
	}
	d.cursor++
	d.modified = true
}

// ClearTimestampOrDeleteAtCursor removes the current line's tag, or removes
// the line itself when it is completely empty. The last remaining line is
// never deleted. A plain unstamped line is left unchanged.
func (d *Document) ClearTimestampOrDeleteAtCursor() {
	line := d.lines[d.cursor]
	switch {
	case !line.Synced() && line.Text == "":
		if len(d.lines) == 1 {
			return
		}
		d.lines = append(d.lines[:d.cursor], d.lines[d.cursor+1:]...)
		if d.cursor >= len(d.lines) {
			d.cursor = len(d.lines) - 1
		}
		d.modified = true
	case line.Synced():
		line.Time = NoTimestamp
		d.lines[d.cursor] = line
		d.modified = true
	default:
		if stripped, ok := stripBracketPrefix(line.Text); ok {
			line.Text = stripped
			d.lines[d.cursor] = line
			d.modified = true
		}
	}
}

// MoveCursor shifts the cursor by delta, clamping to the document bounds.
func (d *Document) MoveCursor(delta int) {
	d.SetCursor(d.cursor + delta)
}

// SetCursor places the cursor on index, clamping to the document bounds.
func (d *Document) SetCursor(index int) {
	if index < 0 {
		index = 0
	}
	if index > len(d.lines)-1 {
		index = len(d.lines) - 1
	}
	d.cursor = index
}

func (d *Document) Len() int {
	return len(d.lines)
}

func (d *Document) At(index int) Line {
	return d.lines[index]
}

func (d *Document) Cursor() int {
	return d.cursor
}

func (d *Document) Modified() bool {
	return d.modified
}

func (d *Document) Path() string {
	return d.path
}

// SetPath retargets where Save writes, e.g. after seeding a document for a
// track that has no lyrics file yet.
func (d *Document) SetPath(path string) {
	d.path = path
}

// SyncedCount reports how many lines currently carry a timestamp.
func (d *Document) SyncedCount() int {
	count := 0
	for _, line := range d.lines {
		if line.Synced() {
			count++
		}
	}
	return count
}
