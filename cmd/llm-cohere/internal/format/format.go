// Package format renders CLI output: markdown through glamour, styled text
// through lipgloss, and width-aware columns through go-runewidth.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/accudio/llm-cohere/pkg/modeladapter/usage"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// GitHub terminal light theme palette.
var (
	ColorMuted  = lipgloss.Color("#656d76")
	ColorAccent = lipgloss.Color("#0969da")
	ColorError  = lipgloss.Color("#cf222e")
)

var (
	ModelStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	OptionStyle = lipgloss.NewStyle().Bold(true)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
)

// RenderMarkdown converts markdown text to terminal-formatted output. The
// style is fixed from dark so glamour never queries the terminal itself.
func RenderMarkdown(text string, width int, dark bool) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	style := glamourstyles.LightStyleConfig
	if dark {
		style = glamourstyles.DarkStyleConfig
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("format: markdown renderer: %w", err)
	}

	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("format: render markdown: %w", err)
	}

	return strings.TrimRight(out, "\n") + "\n", nil
}

// FmtTokens formats a token count for display, using k/M suffixes.
func FmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FmtDuration formats a duration for display.
func FmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, sec)
}

// Usage formats billed token usage and elapsed time.
func Usage(u usage.TokenCount, d time.Duration) string {
	return fmt.Sprintf("Token usage: %s input, %s output (%s)",
		FmtTokens(u.InputTokens), FmtTokens(u.OutputTokens), FmtDuration(d))
}

// Columns aligns rows into columns separated by gap spaces. Widths are
// measured in terminal cells, so wide runes line up. Trailing blanks are
// trimmed from every line.
func Columns(rows [][]string, gap int) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	sep := strings.Repeat(" ", gap)

	var sb strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
			line.WriteString(sep)
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Wrap word-wraps text to width cells, prefixing every line with indent.
func Wrap(text string, width int, indent string) string {
	avail := width - runewidth.StringWidth(indent)
	if avail < 20 {
		avail = 20
	}

	var (
		sb   strings.Builder
		line int
	)
	sb.WriteString(indent)
	for i, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		if i > 0 {
			if line+1+w > avail {
				sb.WriteString("\n")
				sb.WriteString(indent)
				line = 0
			} else {
				sb.WriteString(" ")
				line++
			}
		}
		sb.WriteString(word)
		line += w
	}

	return sb.String()
}
