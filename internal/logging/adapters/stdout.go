package adapters

import (
	"fmt"
	"io"
	"sync"

	"jobdesk/internal/logging/types"
)

// StdoutAdapter writes formatted entries to a stream, normally os.Stdout
type StdoutAdapter struct {
	name      string
	out       io.Writer
	format    string
	colorized bool
	mu        sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string `yaml:"format"`    // json or text
	Colorized bool   `yaml:"colorized"` // ANSI colours on the level tag
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, out io.Writer, config StdoutConfig) *StdoutAdapter {
	return &StdoutAdapter{
		name:      name,
		out:       out,
		format:    config.Format,
		colorized: config.Colorized,
	}
}

// Write writes a log entry to the stream
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	var colorize func(string) string
	if a.colorized {
		colorize = colorizeLevel
	}

	line, err := formatEntry(a.format, entry, colorize)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = fmt.Fprintln(a.out, line)
	return err
}

func (a *StdoutAdapter) Close() error  { return nil }
func (a *StdoutAdapter) Health() error { return nil }
func (a *StdoutAdapter) Name() string  { return a.name }

func colorizeLevel(level string) string {
	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		blue   = "\033[34m"
		gray   = "\033[90m"
		reset  = "\033[0m"
	)

	switch level {
	case "DEBUG":
		return gray + level + reset
	case "INFO":
		return blue + level + reset
	case "WARN":
		return yellow + level + reset
	case "ERROR", "FATAL":
		return red + level + reset
	default:
		return level
	}
}
