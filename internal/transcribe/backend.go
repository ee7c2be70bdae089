// Package transcribe turns an audio file into a rough, timestamped draft via
// a Whisper-style speech-to-text API. The draft is a starting point meant to
// be corrected in the editor, not a finished lyric sheet.
package transcribe

import (
	"context"
	"time"
)

// Segment is a portion of transcribed audio.
type Segment struct {
	StartSec float64
	EndSec   float64
	Text     string
}

// Transcript bundles the segments.
type Transcript struct {
	Language string
	Segments []Segment
	Duration time.Duration
}

// Backend is a pluggable transcription backend.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) (Transcript, error)
}
