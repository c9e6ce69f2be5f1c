package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#00D4AA")
	success = lipgloss.Color("#39FF14")
	warning = lipgloss.Color("#FFB000")
	dim     = lipgloss.Color("#3a3a4e")
)

// styles holds the lipgloss styles bound to one output writer. On a writer
// that is not a terminal every style renders plain text.
type styles struct {
	header  lipgloss.Style
	ok      lipgloss.Style
	notice  lipgloss.Style
	rule    lipgloss.Style
	label   lipgloss.Style
	heading lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().
			Foreground(accent).
			Bold(true),
		ok: r.NewStyle().
			Foreground(success),
		notice: r.NewStyle().
			Foreground(warning),
		rule: r.NewStyle().
			Foreground(dim),
		label: r.NewStyle().
			Bold(true),
		heading: r.NewStyle().
			Foreground(accent).
			Underline(true),
	}
}
