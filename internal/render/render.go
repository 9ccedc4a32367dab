// Package render presents registry data, matches and commands on a terminal.
// A Renderer is chosen once at startup; callers never branch on output style.
package render

import (
	"io"
	"os"
	"strings"

	"github.com/Dleifnesor/PAW/internal/expander"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/resolver"
	"github.com/mattn/go-isatty"
)

// Renderer writes user-facing output.
type Renderer interface {
	Tools(entries []registry.ToolEntry) error
	Tool(entry registry.ToolEntry) error
	Categories(categories []string) error
	Matches(matches []resolver.Match) error
	Command(res expander.Result) error
	Explanation(markdown string) error
	ImportReport(report registry.ImportReport, dryRun bool) error
	Notice(level Level, msg string) error
}

// Level grades a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "ok"
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Mode names a renderer choice from configuration.
const (
	ModeAuto     = "auto"
	ModePlain    = "plain"
	ModeEnhanced = "enhanced"
)

// New picks a renderer for w. In auto mode the enhanced renderer is used only
// when w is a terminal and NO_COLOR is unset.
func New(mode, theme string, w io.Writer) Renderer {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModePlain:
		return NewPlain(w)
	case ModeEnhanced:
		return NewEnhanced(w, ThemeByName(theme))
	default:
		if IsColorTerminal(w) {
			return NewEnhanced(w, ThemeByName(theme))
		}
		return NewPlain(w)
	}
}

// IsColorTerminal reports whether w is a TTY that accepts colour.
func IsColorTerminal(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
