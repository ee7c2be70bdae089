package lrc

import (
	"fmt"
	"strconv"
	"strings"
)

// NoTimestamp is the sentinel for a line that carries no usable timestamp.
// malformed bracket prefixes collapse to it as well, so callers never have
// to distinguish "absent" from "unparseable".
const NoTimestamp float64 = -1

// FormatTimestamp renders seconds as an lrc tag, e.g. 125.4 -> "[02:05.40]".
// minutes are zero-padded to two digits but never capped, so tracks over an
// hour keep a growing minute field.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	remainder := seconds - float64(minutes*60)
	return fmt.Sprintf("[%02d:%05.2f]", minutes, remainder)
}

// ExtractTimestamp parses the leading lrc tag of a line into seconds.
// lines that do not start with '[', or whose bracket holds anything other
// than a minute:second pair, yield NoTimestamp.
func ExtractTimestamp(line string) float64 {
	if !strings.HasPrefix(line, "[") {
		return NoTimestamp
	}
	end := strings.Index(line, "]")
	if end <= 1 {
		return NoTimestamp
	}

	parts := strings.Split(line[1:end], ":")
	if len(parts) != 2 {
		return NoTimestamp
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || minutes < 0 {
		return NoTimestamp
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || seconds < 0 {
		return NoTimestamp
	}

	return float64(minutes)*60 + seconds
}

// stripBracketPrefix removes a complete leading "[...]" segment, reporting
// whether one was found. used when stamping or clearing lines whose bracket
// did not parse as a timestamp.
func stripBracketPrefix(s string) (string, bool) {
	if !strings.HasPrefix(s, "[") {
		return s, false
	}
	end := strings.Index(s, "]")
	if end < 0 {
		return s, false
	}
	return s[end+1:], true
}
