package transcribe

import (
	"strings"

	"mkowalczyk.dev/lrctap/internal/lrc"
)

// DraftLRC renders a transcript as LRC text, one line per segment stamped
// with the segment's start time. Empty segments are dropped.
func DraftLRC(tr Transcript) string {
	var b strings.Builder
	for _, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		b.WriteString(lrc.FormatTimestamp(seg.StartSec))
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
