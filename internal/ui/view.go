package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"mkowalczyk.dev/lrctap/internal/artwork"
	"mkowalczyk.dev/lrctap/internal/colors"
	"mkowalczyk.dev/lrctap/internal/lrc"
	"mkowalczyk.dev/lrctap/internal/player"
)

// gutterWidth fits a rendered timestamp tag plus one space.
const gutterWidth = 11

// markFlashFor is how long a freshly stamped tag glows before settling into
// the accent color.
const markFlashFor = 900 * time.Millisecond

func (m Model) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	if m.quitting {
		return ""
	}

	palette := m.palette
	if palette == nil {
		palette = artwork.DefaultPalette()
	}

	doc := m.ctrl.Document()
	bareLaunch := m.current == nil && doc.Path() == "" &&
		doc.Len() == 1 && doc.At(0).Text == ""
	if bareLaunch {
		return m.renderWaitingScreen(palette, width, height)
	}

	return m.renderMainScreen(palette, width, height)
}

func (m Model) renderWaitingScreen(palette *artwork.Palette, width int, height int) string {
	var banner []string
	if width >= 50 && height >= 14 {
		banner = figure.NewFigure("lrctap", "", true).Slicify()
	}

	top := (height - len(banner) - 5) / 2
	if top < 0 {
		top = 0
	}

	var lines []string
	for i := 0; i < top; i++ {
		lines = append(lines, "")
	}

	bannerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Primary))
	for _, b := range banner {
		lines = append(lines, centerText(bannerStyle.Render(b), len(b), width))
	}
	if len(banner) > 0 {
		lines = append(lines, "")
	}

	waitText := "awaiting music"
	waitStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(palette.Dim)).
		Italic(true)
	lines = append(lines, centerText(waitStyle.Render(waitText), len(waitText), width))

	pulseChars := []string{"·", "•", "●", "•"}
	pulseIdx := (m.tickCount / 4) % len(pulseChars)
	pulseStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Secondary))
	lines = append(lines, centerText(pulseStyle.Render(pulseChars[pulseIdx]), 1, width))

	lines = append(lines, "")
	hint := "start a media player, or pass an audio file to edit its lyrics"
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim))
	lines = append(lines, centerText(hintStyle.Render(hint), len(hint), width))

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderMainScreen(palette *artwork.Palette, width int, height int) string {
	var lines []string

	if !m.hideHeader {
		lines = append(lines, m.renderHeader(palette, width)...)
	}

	helpView := m.help.View(m.keys)
	helpLines := strings.Split(helpView, "\n")
	for i, hl := range helpLines {
		helpLines[i] = "  " + hl
	}

	footerHeight := len(helpLines) + 1

	docHeight := height - len(lines) - footerHeight
	if docHeight < 3 {
		docHeight = 3
	}

	lines = append(lines, m.renderDocument(palette, docHeight, width)...)

	for len(lines) < height-footerHeight {
		lines = append(lines, "")
	}

	lines = append(lines, m.renderStatusLine(palette, width))
	lines = append(lines, helpLines...)

	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHeader(palette *artwork.Palette, width int) []string {
	var lines []string

	lines = append(lines, "")

	artWidth, artHeight := m.artSize()
	infoLines := m.renderTrackInfo(palette, width)

	if m.kittyArt != "" {
		lines = append(lines, "  "+m.kittyArt)
		// placeholder rows so the drawn image occupies real vertical space
		for i := 0; i < artHeight-1; i++ {
			lines = append(lines, "  ")
		}
		for _, infoLine := range infoLines {
			lines = append(lines, "  "+infoLine)
		}
	} else {
		maxLines := len(infoLines)
		if len(m.halfBlockArt) > maxLines {
			maxLines = len(m.halfBlockArt)
		}

		for i := 0; i < maxLines; i++ {
			var line strings.Builder

			if len(m.halfBlockArt) > 0 {
				if i < len(m.halfBlockArt) {
					line.WriteString("  ")
					line.WriteString(m.halfBlockArt[i])
					line.WriteString("  ")
				} else {
					line.WriteString(strings.Repeat(" ", artWidth+4))
				}
			} else {
				line.WriteString("  ")
			}

			if i < len(infoLines) {
				line.WriteString(infoLines[i])
			}

			lines = append(lines, line.String())
		}
	}

	lines = append(lines, "")

	if m.current != nil && m.current.DurationSecs > 0 {
		lines = append(lines, m.renderProgress(palette, width))
	}

	lines = append(lines, "")

	return lines
}

func (m Model) renderTrackInfo(palette *artwork.Palette, width int) []string {
	maxWidth := width - 20
	if maxWidth < 20 {
		maxWidth = 20
	}

	artistStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Secondary))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim))

	var lines []string

	if m.current != nil {
		title := truncate(m.current.Title, maxWidth)
		lines = append(lines, colors.RenderGradientText(title, palette.Gradient, true))
		lines = append(lines, artistStyle.Render(truncate(m.current.Artist, maxWidth)))
		if m.current.Album != "" {
			lines = append(lines, dimStyle.Render(truncate(m.current.Album, maxWidth)))
		}
	} else {
		name := filepath.Base(m.ctrl.Document().Path())
		if name == "." || name == "/" {
			name = "untitled"
		}
		lines = append(lines, colors.RenderGradientText(truncate(name, maxWidth), palette.Gradient, true))
		lines = append(lines, artistStyle.Render("no player connected"))
	}

	playerName := "no player"
	if m.playback != nil {
		if svc := m.playback.Service(); svc != "" {
			playerName = player.ShortName(svc)
		}
	}
	lines = append(lines, dimStyle.Render(statusSymbol(m.snapshot.Status)+" "+playerName))

	return lines
}

func (m Model) renderProgress(palette *artwork.Palette, width int) string {
	if m.current == nil || m.current.DurationSecs == 0 {
		return ""
	}

	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}

	pos := m.snapshot.Position
	if pos < 0 {
		pos = 0
	}

	progress := pos / float64(m.current.DurationSecs)
	if progress > 1.0 {
		progress = 1.0
	}

	filledWidth := int(float64(barWidth) * progress)

	var bar strings.Builder

	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Primary))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim)).Faint(true)

	for i := 0; i < barWidth; i++ {
		if i < filledWidth {
			bar.WriteString(filledStyle.Render("━"))
		} else if i == filledWidth {
			bar.WriteString(filledStyle.Render("●"))
		} else {
			bar.WriteString(emptyStyle.Render("─"))
		}
	}

	currentTime := colors.FormatTime(int64(pos))
	totalTime := colors.FormatTime(m.current.DurationSecs)

	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim))

	return fmt.Sprintf("  %s  %s  %s",
		timeStyle.Render(currentTime),
		bar.String(),
		timeStyle.Render(totalTime))
}

// renderDocument draws a window of the lyrics document centered on the
// cursor, clamped at both ends so short documents stay at the top.
func (m Model) renderDocument(palette *artwork.Palette, height int, width int) []string {
	doc := m.ctrl.Document()
	cursor := doc.Cursor()
	total := doc.Len()

	start := cursor - height/2
	if start > total-height {
		start = total - height
	}
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
	}

	mark := m.ctrl.LastMark()
	flashing := mark.Valid() && time.Since(mark.At) < markFlashFor

	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		line := doc.At(i)
		flash := flashing && line.Synced() && line.Time == mark.Seconds
		lines = append(lines, m.renderDocLine(palette, line, i == cursor, absInt(i-cursor), flash, width))
	}

	return lines
}

func (m Model) renderDocLine(palette *artwork.Palette, line lrc.Line, onCursor bool, dist int, flash bool, width int) string {
	var b strings.Builder

	if onCursor {
		cursorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette.Accent)).
			Bold(true)
		b.WriteString(cursorStyle.Render("❯ "))
	} else {
		b.WriteString("  ")
	}

	if line.Synced() {
		tagColor := palette.Accent
		if flash {
			// freshly stamped tags start bright and settle into the accent
			age := time.Since(m.ctrl.LastMark().At).Seconds() / markFlashFor.Seconds()
			tagColor = colors.BlendColors("#FFFFFF", palette.Accent, age)
		}
		tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tagColor))
		b.WriteString(tagStyle.Render(lrc.FormatTimestamp(line.Time)))
		b.WriteString(" ")
	} else {
		b.WriteString(strings.Repeat(" ", gutterWidth))
	}

	avail := width - gutterWidth - 4
	if avail < 10 {
		avail = 10
	}
	text := truncate(line.Text, avail)

	textColor := palette.Primary
	if !onCursor {
		factor := 1.0 - 0.08*float64(dist)
		if factor < 0.45 {
			factor = 0.45
		}
		textColor = colors.AdjustBrightness(palette.Secondary, factor)
	}

	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(textColor))
	if onCursor {
		textStyle = textStyle.Bold(true)
	}
	b.WriteString(textStyle.Render(text))

	return b.String()
}

func (m Model) renderStatusLine(palette *artwork.Palette, width int) string {
	text := m.statusText
	if text == "" {
		doc := m.ctrl.Document()
		text = fmt.Sprintf("%s mode · %d/%d synced", m.ctrl.Mode(), doc.SyncedCount(), doc.Len())
		if mark := m.ctrl.LastMark(); mark.Valid() {
			text += " · last mark " + lrc.FormatTimestamp(mark.Seconds)
		}
		if m.ctrl.Modified() {
			text += " · unsaved"
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Secondary))
	return "  " + style.Render(truncate(text, width-4))
}

func statusSymbol(s player.Status) string {
	switch s {
	case player.StatusPlaying:
		return "▶"
	case player.StatusPaused:
		return "❚❚"
	case player.StatusStopped:
		return "■"
	default:
		return "–"
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "…"
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func centerText(text string, visualWidth int, screenWidth int) string {
	padding := (screenWidth - visualWidth) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat(" ", padding) + text
}
