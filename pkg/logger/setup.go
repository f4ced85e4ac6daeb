package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

// Options selects how the CLI logger is built
type Options struct {
	Level string
	JSON  bool
	File  string
	// Quiet discards output unless File is set. The full-screen grid uses it.
	Quiet bool
}

// Setup builds the process logger, installs it as the default and returns a
// closer for the log file, if any.
func Setup(opts Options) (Logger, io.Closer, error) {
	var output io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output, closer = f, f
	case opts.Quiet:
		output = io.Discard
	}
	l := NewLogger(&Config{
		Level:      ParseLevel(opts.Level),
		Output:     output,
		JSON:       opts.JSON,
		TimeFormat: "15:04:05",
	})
	SetDefault(l)
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultStyles() *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	styles.Levels[charmlog.DebugLevel] = levelStyle("DEBU", "#7D56F4")
	styles.Levels[charmlog.InfoLevel] = levelStyle("INFO", "#04B575")
	styles.Levels[charmlog.WarnLevel] = levelStyle("WARN", "#FFB86C")
	styles.Levels[charmlog.ErrorLevel] = levelStyle("ERRO", "#FF6B6B")
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	return styles
}

func levelStyle(label, color string) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(label).
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color(color))
}
