package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstLine(text string) Line {
	return Format(text)[0].Lines[0]
}

func TestFormatBold(t *testing.T) {
	got := Format("**bold**")
	require.Len(t, got, 1)
	require.Len(t, got[0].Lines, 1)
	assert.Equal(t, []Segment{{Kind: Bold, Text: "bold"}}, got[0].Lines[0].Segments)
}

func TestFormatBullet(t *testing.T) {
	got := Format("* item")
	line := got[0].Lines[0]
	assert.True(t, line.Bullet)
	assert.Equal(t, []Segment{{Kind: Plain, Text: "item"}}, line.Segments)
}

func TestFormatBulletWithBold(t *testing.T) {
	line := firstLine("  *   **Go** is fast")
	assert.True(t, line.Bullet)
	assert.Equal(t, []Segment{{Kind: Bold, Text: "Go"}, {Kind: Plain, Text: " is fast"}}, line.Segments)
}

func TestFormatParagraphs(t *testing.T) {
	got := Format("a\n\nb")
	require.Len(t, got, 2)
	assert.False(t, got[0].Spaced)
	assert.True(t, got[1].Spaced)
	assert.Equal(t, "a", got[0].Lines[0].Segments[0].Text)
	assert.Equal(t, "b", got[1].Lines[0].Segments[0].Text)
}

func TestFormatParagraphBreakWithWhitespaceAndCRLF(t *testing.T) {
	got := Format("a\r\n  \r\nb\nc")
	require.Len(t, got, 2)
	require.Len(t, got[1].Lines, 2)
	assert.False(t, got[1].Lines[0].Spaced)
	assert.True(t, got[1].Lines[1].Spaced)
}

func TestFormatUnterminatedBoldIsLiteral(t *testing.T) {
	got := Format("**bold")
	line := got[0].Lines[0]
	assert.False(t, line.Bullet)
	assert.Equal(t, []Segment{{Kind: Plain, Text: "**bold"}}, line.Segments)
}

func TestFormatEmptyBoldIsLiteral(t *testing.T) {
	line := firstLine("x **** y")
	assert.Equal(t, []Segment{{Kind: Plain, Text: "x **** y"}}, line.Segments)
}

func TestFormatMultipleBoldSpans(t *testing.T) {
	line := firstLine("**a** and **b**")
	assert.Equal(t, []Segment{
		{Kind: Bold, Text: "a"},
		{Kind: Plain, Text: " and "},
		{Kind: Bold, Text: "b"},
	}, line.Segments)
}

func TestFormatIsDeterministic(t *testing.T) {
	in := "**Title**\n* one\n* two\n\nDone."
	assert.Equal(t, Format(in), Format(in))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Title\n• one\n\nDone.", PlainText(Format("**Title**\n* one\n\nDone.")))
}

func TestRenderKeepsContent(t *testing.T) {
	out := Render(Format("**Hi**\n* item\n\nbye"), DefaultTheme(), false)
	assert.Contains(t, out, "Hi")
	assert.Contains(t, out, "• item")
	assert.Contains(t, out, "\n\nbye")
	assert.NotContains(t, out, "**")

	compact := Render(Format("a\n\nb"), DefaultTheme(), true)
	assert.False(t, strings.Contains(compact, "\n\n"))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "3:04 PM", Clock(time.Date(2024, 1, 1, 15, 4, 0, 0, time.UTC)))
	assert.Equal(t, "12:00 AM", Clock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}
