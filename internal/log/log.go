// Package log is the process-wide diagnostic logger. It writes leveled,
// key/value records to stderr so they never mix with command output.
package log

import (
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
)

var logger = New(os.Stderr, false)

// New builds a logger writing to w. verbose enables Debug records.
func New(w io.Writer, verbose bool) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "tokendash",
	})
	l.SetLevel(charmlog.WarnLevel)
	if verbose {
		l.SetLevel(charmlog.DebugLevel)
	}

	styles := charmlog.DefaultStyles()
	styles.Levels[charmlog.DebugLevel] = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).SetString("DEBUG")
	styles.Levels[charmlog.InfoLevel] = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B4D8")).SetString("INFO")
	styles.Levels[charmlog.WarnLevel] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB800")).SetString("WARN")
	styles.Levels[charmlog.ErrorLevel] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).SetString("ERROR")
	l.SetStyles(styles)
	return l
}

// Setup replaces the package logger. Called once from the root command.
func Setup(verbose bool) {
	logger = New(os.Stderr, verbose)
}

// SetOutput redirects the package logger, keeping its level. A Bubble Tea
// program owns the terminal while it runs, so TUIs point this at a buffer.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger returns the package logger.
func Logger() *charmlog.Logger { return logger }

// With returns a child logger carrying keyvals on every record.
func With(keyvals ...interface{}) *charmlog.Logger { return logger.With(keyvals...) }

func Debug(msg string, keyvals ...interface{}) { logger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { logger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { logger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { logger.Error(msg, keyvals...) }
