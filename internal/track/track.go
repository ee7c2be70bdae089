// Package track carries the metadata snapshot of whatever the bound media
// player is currently playing.
package track

import (
	"net/url"
	"strings"
)

type Info struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
	FileURL      string
	ArtworkURL   string
	TrackID      string
}

func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.Title != "" && t.Artist != ""
}

func (t *Info) IsSameTrack(other *Info) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.TrackID != "" && other.TrackID != "" {
		return t.TrackID == other.TrackID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}

// LocalPath resolves the track's source URL to a filesystem path. Streams
// and non-file URLs have none.
func (t *Info) LocalPath() string {
	if t == nil || !strings.HasPrefix(t.FileURL, "file://") {
		return ""
	}

	trimmed := strings.TrimPrefix(t.FileURL, "file://")
	unescaped, err := url.PathUnescape(trimmed)
	if err != nil {
		return trimmed
	}
	return unescaped
}
