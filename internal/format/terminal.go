package format

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the terminal styles used by Render.
type Theme struct {
	Bold   lipgloss.Style
	Bullet lipgloss.Style
	Text   lipgloss.Style
}

// DefaultTheme mirrors the chat bubble palette.
func DefaultTheme() Theme {
	return Theme{
		Bold:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("153")),
		Bullet: lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		Text:   lipgloss.NewStyle(),
	}
}

// Render lays paragraphs out for a terminal. Compact drops the blank line
// between paragraphs.
func Render(paragraphs []Paragraph, theme Theme, compact bool) string {
	var b strings.Builder
	for _, p := range paragraphs {
		if p.Spaced {
			b.WriteString("\n")
			if !compact {
				b.WriteString("\n")
			}
		}
		for _, line := range p.Lines {
			if line.Spaced {
				b.WriteString("\n")
			}
			if line.Bullet {
				b.WriteString(theme.Bullet.Render("•"))
				b.WriteString(" ")
			}
			for _, seg := range line.Segments {
				switch seg.Kind {
				case Bold:
					b.WriteString(theme.Bold.Render(seg.Text))
				default:
					b.WriteString(theme.Text.Render(seg.Text))
				}
			}
		}
	}
	return b.String()
}
