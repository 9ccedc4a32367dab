package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/resolver"
)

// PlainRenderer writes unstyled text suitable for pipes and logs.
type PlainRenderer struct {
	w io.Writer
}

// NewPlain creates a PlainRenderer writing to w.
func NewPlain(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w}
}

func (p *PlainRenderer) Tools(entries []registry.ToolEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(p.w, "no tools found")
		return err
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Category, e.Description)
	}
	return tw.Flush()
}

func (p *PlainRenderer) Tool(e registry.ToolEntry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:        %s\n", e.Name)
	fmt.Fprintf(&b, "Category:    %s\n", e.Category)
	fmt.Fprintf(&b, "Description: %s\n", e.Description)
	fmt.Fprintf(&b, "Usage:       %s\n", e.Usage)
	if len(e.Examples) > 0 {
		b.WriteString("Examples:\n")
		for _, ex := range e.Examples {
			fmt.Fprintf(&b, "  %s\n    $ %s\n", ex.Description, ex.Command)
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *PlainRenderer) Categories(categories []string) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(p.w, "no categories")
		return err
	}
	_, err := fmt.Fprintln(p.w, strings.Join(categories, "\n"))
	return err
}

func (p *PlainRenderer) Matches(matches []resolver.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(p.w, "no matching tools")
		return err
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTOOL\tSCORE\tKEYWORDS")
	for i, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, m.Name, m.Score, strings.Join(m.Keywords, ", "))
	}
	return tw.Flush()
}

func (p *PlainRenderer) Command(res expander.Result) error {
	if _, err := fmt.Fprintln(p.w, res.Command); err != nil {
		return err
	}
	if !res.AllFilled {
		_, err := fmt.Fprintf(p.w, "missing: %s\n", strings.Join(res.Missing, " "))
		return err
	}
	return nil
}

func (p *PlainRenderer) Explanation(markdown string) error {
	_, err := fmt.Fprintln(p.w, strings.TrimSpace(markdown))
	return err
}

func (p *PlainRenderer) ImportReport(report registry.ImportReport, dryRun bool) error {
	verb := "imported"
	if dryRun {
		verb = "would import"
	}
	if _, err := fmt.Fprintf(p.w, "%s %d, skipped %d\n", verb, len(report.Added), len(report.Skipped)); err != nil {
		return err
	}
	for _, reason := range report.Reasons {
		if _, err := fmt.Fprintf(p.w, "  skipped: %s\n", reason); err != nil {
			return err
		}
	}
	return nil
}

func (p *PlainRenderer) Notice(level Level, msg string) error {
	if level == LevelInfo || level == LevelSuccess {
		_, err := fmt.Fprintln(p.w, msg)
		return err
	}
	_, err := fmt.Fprintf(p.w, "%s: %s\n", level, msg)
	return err
}
