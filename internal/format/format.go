// Package format turns assistant replies written in a small markdown subset
// (bold spans, bullet lines, paragraph breaks) into renderable structure.
package format

import (
	"regexp"
	"strings"
	"time"
)

// SegmentKind tells a renderer how to style a run of text.
type SegmentKind int

const (
	Plain SegmentKind = iota
	Bold
)

// Segment is a styled run of text inside a line.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Line is one source line. Spaced is set for every line after the first in its
// paragraph so renderers can add inner spacing.
type Line struct {
	Bullet   bool
	Spaced   bool
	Segments []Segment
}

// Paragraph is a block separated from its neighbours by a blank line. Spaced is
// set for every paragraph after the first.
type Paragraph struct {
	Spaced bool
	Lines  []Line
}

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	boldSpan       = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// Format parses text. The result depends only on the input.
func Format(text string) []Paragraph {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	sections := paragraphBreak.Split(text, -1)
	paragraphs := make([]Paragraph, 0, len(sections))
	for i, section := range sections {
		rawLines := strings.Split(section, "\n")
		p := Paragraph{Spaced: i > 0, Lines: make([]Line, 0, len(rawLines))}
		for j, raw := range rawLines {
			line := parseLine(raw)
			line.Spaced = j > 0
			p.Lines = append(p.Lines, line)
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

func parseLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "**") {
		return Line{Bullet: true, Segments: parseInline(strings.TrimSpace(trimmed[1:]))}
	}
	return Line{Segments: parseInline(raw)}
}

// parseInline splits s into plain and bold segments, left to right. Unterminated
// or empty markers are kept as literal text.
func parseInline(s string) []Segment {
	matches := boldSpan.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		if s == "" {
			return nil
		}
		return []Segment{{Kind: Plain, Text: s}}
	}

	segments := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Segment{Kind: Plain, Text: s[last:m[0]]})
		}
		segments = append(segments, Segment{Kind: Bold, Text: s[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(s) {
		segments = append(segments, Segment{Kind: Plain, Text: s[last:]})
	}
	return segments
}

// PlainText flattens paragraphs back into unstyled text, e.g. for speech output.
func PlainText(paragraphs []Paragraph) string {
	var b strings.Builder
	for _, p := range paragraphs {
		if p.Spaced {
			b.WriteString("\n\n")
		}
		for _, line := range p.Lines {
			if line.Spaced {
				b.WriteString("\n")
			}
			if line.Bullet {
				b.WriteString("• ")
			}
			for _, seg := range line.Segments {
				b.WriteString(seg.Text)
			}
		}
	}
	return b.String()
}

// Clock renders a message timestamp the way the chat bubbles show it, e.g. "3:04 PM".
func Clock(t time.Time) string {
	return t.Format("3:04 PM")
}
