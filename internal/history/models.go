// Package history keeps a local SQLite log of editing sessions so finished
// work for a track can be found again later.
package history

import "time"

// Save records one write of an LRC file.
type Save struct {
	ID          string
	AudioPath   string
	LrcPath     string
	TrackTitle  string
	TrackArtist string
	Player      string
	LinesTotal  int
	LinesSynced int
	SavedAt     time.Time
}

// Complete reports whether every line carried a timestamp at save time.
func (s Save) Complete() bool {
	return s.LinesTotal > 0 && s.LinesSynced == s.LinesTotal
}
