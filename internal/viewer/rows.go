package viewer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/transcript"
)

const stampFormat = "15:04"

// renderLines flattens projected entries into display lines: date
// separators, sender headers, wrapped bodies, media indicators.
func renderLines(entries []transcript.Entry, width int, palette Palette, loc *time.Location) []string {
	if width < 12 {
		width = 12
	}
	if loc == nil {
		loc = time.Local
	}

	sepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Separator))
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Accent)).Bold(true)
	ownStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Own))
	otherStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Other))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Muted))

	var lines []string
	for _, entry := range entries {
		d := entry.Directive

		if d.DateSeparator {
			lines = append(lines, sepStyle.Render(separatorLine(d.DateLabel, width)))
		}
		if d.SenderHeader {
			badge := d.Initials
			if badge == "" {
				badge = "◉"
			}
			lines = append(lines, headerStyle.Render(fmt.Sprintf("[%s] %s", badge, d.SenderLabel)))
		}

		stamp := mutedStyle.Render(entry.Message.Time.In(loc).Format(stampFormat))
		style := otherStyle
		if d.Outgoing {
			style = ownStyle
		}

		for i, body := range bodyLines(entry, width-8) {
			text := style.Render(body)
			if i == 0 {
				text = stamp + " " + text
			} else {
				text = strings.Repeat(" ", len(stampFormat)+1) + text
			}
			if d.Outgoing {
				text = lipgloss.PlaceHorizontal(width, lipgloss.Right, text)
			}
			lines = append(lines, text)
		}
	}
	return lines
}

// bodyLines returns the message's wrapped text plus its media
// indicator, one element per display line.
func bodyLines(entry transcript.Entry, width int) []string {
	if width < 8 {
		width = 8
	}

	var lines []string
	if entry.Message.Body != "" {
		wrapped := wordwrap.String(entry.Message.Body, width)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	if indicator := mediaIndicator(entry); indicator != "" {
		lines = append(lines, indicator)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

func mediaIndicator(entry transcript.Entry) string {
	msg := entry.Message
	if msg.Media == nil {
		return ""
	}
	if entry.Directive.MediaMissing {
		return "[media not loaded]"
	}
	if msg.Media.Kind == backup.MediaPhoto {
		return "[photo]"
	}
	return fmt.Sprintf("[document: %s]", msg.Media.MIME)
}

func separatorLine(label string, width int) string {
	text := " " + label + " "
	fill := width - lipgloss.Width(text)
	if fill < 2 {
		return text
	}
	left := fill / 2
	right := fill - left
	return strings.Repeat("─", left) + text + strings.Repeat("─", right)
}
