package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/resolver"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const wrapWidth = 88

// EnhancedRenderer writes themed, boxed output and renders explanations as markdown.
type EnhancedRenderer struct {
	w     io.Writer
	theme Theme

	title  lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	accent lipgloss.Style
	box    lipgloss.Style
	levels map[Level]lipgloss.Style
}

// NewEnhanced creates an EnhancedRenderer for w. Colour support is detected
// from w itself.
func NewEnhanced(w io.Writer, theme Theme) *EnhancedRenderer {
	lr := lipgloss.NewRenderer(w)
	return &EnhancedRenderer{
		w:      w,
		theme:  theme,
		title:  lr.NewStyle().Bold(true).Foreground(theme.Primary),
		label:  lr.NewStyle().Bold(true).Foreground(theme.Accent),
		muted:  lr.NewStyle().Foreground(theme.Muted),
		accent: lr.NewStyle().Foreground(theme.Accent),
		box: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		levels: map[Level]lipgloss.Style{
			LevelInfo:    lr.NewStyle().Foreground(theme.Accent),
			LevelSuccess: lr.NewStyle().Foreground(theme.Success),
			LevelWarn:    lr.NewStyle().Foreground(theme.Warning),
			LevelError:   lr.NewStyle().Bold(true).Foreground(theme.Error),
		},
	}
}

func (e *EnhancedRenderer) println(s string) error {
	_, err := fmt.Fprintln(e.w, s)
	return err
}

func (e *EnhancedRenderer) Tools(entries []registry.ToolEntry) error {
	if len(entries) == 0 {
		return e.println(e.muted.Render("no tools found"))
	}
	width := 0
	for _, t := range entries {
		if n := lipgloss.Width(t.Name); n > width {
			width = n
		}
	}
	nameCol := e.label.Width(width + 2)
	lines := make([]string, 0, len(entries))
	for _, t := range entries {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			nameCol.Render(t.Name),
			e.muted.Render("["+t.Category+"] "),
			t.Description,
		))
	}
	return e.println(strings.Join(lines, "\n"))
}

func (e *EnhancedRenderer) Tool(t registry.ToolEntry) error {
	var b strings.Builder
	b.WriteString(e.title.Render(t.Name))
	b.WriteString("  " + e.muted.Render(t.Category) + "\n")
	if t.Description != "" {
		b.WriteString(t.Description + "\n")
	}
	b.WriteString("\n" + e.label.Render("usage") + "  " + e.accent.Render(t.Usage))
	if len(t.Examples) > 0 {
		b.WriteString("\n\n" + e.label.Render("examples"))
		for _, ex := range t.Examples {
			b.WriteString("\n  " + e.muted.Render(ex.Description))
			b.WriteString("\n  $ " + e.accent.Render(ex.Command))
		}
	}
	return e.println(e.box.Render(b.String()))
}

func (e *EnhancedRenderer) Categories(categories []string) error {
	if len(categories) == 0 {
		return e.println(e.muted.Render("no categories"))
	}
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, e.accent.Render("• ")+c)
	}
	return e.println(strings.Join(lines, "\n"))
}

func (e *EnhancedRenderer) Matches(matches []resolver.Match) error {
	if len(matches) == 0 {
		return e.println(e.muted.Render("no matching tools"))
	}
	lines := make([]string, 0, len(matches)+1)
	lines = append(lines, e.title.Render("candidates"))
	for i, m := range matches {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			e.muted.Render(fmt.Sprintf("%d.", i+1)),
			e.label.Render(m.Name),
			e.accent.Render(fmt.Sprintf("(%d)", m.Score)),
			e.muted.Render(strings.Join(m.Keywords, ", ")),
		))
	}
	return e.println(strings.Join(lines, "\n"))
}

func (e *EnhancedRenderer) Command(res expander.Result) error {
	body := e.accent.Render("$ ") + res.Command
	if !res.AllFilled {
		body += "\n" + e.levels[LevelWarn].Render("missing: "+strings.Join(res.Missing, " "))
	}
	return e.println(e.box.Render(body))
}

// Explanation renders markdown with glamour, falling back to raw text when the
// markdown renderer cannot be built.
func (e *EnhancedRenderer) Explanation(markdown string) error {
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(e.theme.Markdown),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return e.println(strings.TrimSpace(markdown))
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return e.println(strings.TrimSpace(markdown))
	}
	_, err = io.WriteString(e.w, out)
	return err
}

func (e *EnhancedRenderer) ImportReport(report registry.ImportReport, dryRun bool) error {
	verb := "imported"
	if dryRun {
		verb = "would import"
	}
	lines := []string{
		e.levels[LevelSuccess].Render(fmt.Sprintf("%s %d", verb, len(report.Added))) +
			e.muted.Render(fmt.Sprintf(", skipped %d", len(report.Skipped))),
	}
	for _, reason := range report.Reasons {
		lines = append(lines, e.levels[LevelWarn].Render("  skipped: ")+reason)
	}
	return e.println(strings.Join(lines, "\n"))
}

func (e *EnhancedRenderer) Notice(level Level, msg string) error {
	style, ok := e.levels[level]
	if !ok {
		style = e.levels[LevelInfo]
	}
	prefix := ""
	switch level {
	case LevelWarn, LevelError:
		prefix = level.String() + ": "
	}
	return e.println(style.Render(prefix + msg))
}
