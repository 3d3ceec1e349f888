package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode controls whether level tags are styled
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Level is a log severity
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"
)

var levelColors = map[Level]lipgloss.Color{
	LevelDebug:   lipgloss.Color("14"),
	LevelInfo:    lipgloss.Color("12"),
	LevelSuccess: lipgloss.Color("10"),
	LevelWarn:    lipgloss.Color("11"),
	LevelError:   lipgloss.Color("9"),
}

// Options configures a Logger
type Options struct {
	Color   ColorMode
	File    string // optional append-only log file
	Verbose bool   // enables DEBUG lines
	Out     io.Writer
	ErrOut  io.Writer
}

// Logger provides leveled, optionally colored logging with an optional file sink.
// All methods are safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	verbose bool
	styles  map[Level]lipgloss.Style
	now     func() time.Time
}

// New creates a Logger. Call Close when done if File was set.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		out:     opts.Out,
		errOut:  opts.ErrOut,
		verbose: opts.Verbose,
		now:     time.Now,
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.errOut == nil {
		l.errOut = os.Stderr
	}

	if opts.Color != ColorNever {
		renderer := lipgloss.NewRenderer(l.out)
		if opts.Color == ColorAlways {
			renderer.SetColorProfile(termenv.ANSI256)
		}
		// auto mode leaves the profile to termenv: non-terminals, NO_COLOR and TERM=dumb get Ascii
		if renderer.ColorProfile() != termenv.Ascii {
			l.styles = make(map[Level]lipgloss.Style, len(levelColors))
			for level, color := range levelColors {
				l.styles[level] = renderer.NewStyle().Bold(true).Foreground(color)
			}
		}
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
	}

	return l, nil
}

// Nop returns a Logger that discards everything
func Nop() *Logger {
	return &Logger{out: io.Discard, errOut: io.Discard, now: time.Now}
}

// Close closes the log file if one was opened
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level Level, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	tag := "[" + string(level) + "]"
	plain := ts + " " + tag + " " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.out
	if level == LevelError {
		out = l.errOut
	}
	if style, ok := l.styles[level]; ok {
		_, _ = io.WriteString(out, ts+" "+style.Render(tag)+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Debugf logs at DEBUG level; a no-op unless the logger is verbose
func (l *Logger) Debugf(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.line(LevelInfo, fmt.Sprintf(format, args...))
}

// Successf logs at SUCCESS level
func (l *Logger) Successf(format string, args ...interface{}) {
	l.line(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warnf logs at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.line(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at ERROR level, to the error writer
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.line(LevelError, fmt.Sprintf(format, args...))
}
