// Package ui owns everything the controller prints: leveled log lines, the
// in-place progress line and the interactive pickers. The progress line is
// cleared before every log line and redrawn after it, so scrolling output
// never tears the bar.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	info    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	bar     lipgloss.Style
	banner  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		info:    lipgloss.NewStyle(),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // green
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange-ish
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		bar:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		banner:  lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder()).Padding(0, 1).Margin(1, 0),
	}
}

// Options configures the Logger.
type Options struct {
	// Out is where user-facing output goes, os.Stdout in most cases.
	Out io.Writer

	// Quiet drops Info lines, keeping warnings, errors and the summary.
	Quiet bool
}

// Logger is the stdout logger plus progress-line manager.
type Logger struct {
	out   io.Writer
	mu    sync.Mutex
	style styles
	quiet bool

	// progressLine is the currently drawn in-place line, empty when none.
	progressLine string
}

// New creates a new Logger.
func New(opts Options) *Logger {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Logger{
		out:   opts.Out,
		style: defaultStyles(),
		quiet: opts.Quiet,
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.quiet {
		return
	}
	l.printLog("INFO", l.style.info, format, args...)
}

func (l *Logger) Success(format string, args ...any) {
	l.printLog(" OK ", l.style.success, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.printLog("WARN", l.style.warn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.printLog("FAIL", l.style.err, format, args...)
}

// Banner prints a boxed title.
func (l *Logger) Banner(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearProgressLocked()
	fmt.Fprintln(l.out, l.style.banner.Render(title))
	l.redrawProgressLocked()
}

func (l *Logger) Spacer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearProgressLocked()
	fmt.Fprintln(l.out)
	l.redrawProgressLocked()
}

// printLog clears the live progress line, prints the log line, then puts the
// progress line back.
func (l *Logger) printLog(level string, style lipgloss.Style, format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearProgressLocked()
	fmt.Fprintln(l.out, style.Render(line))
	l.redrawProgressLocked()
}

// SetProgress draws or updates the in-place progress line.
func (l *Logger) SetProgress(current, total uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearProgressLocked()
	l.progressLine = l.style.bar.Render(renderProgress(current, total))
	fmt.Fprint(l.out, l.progressLine)
}

// EndProgress removes the progress line for good, e.g. before a prompt or at
// session end.
func (l *Logger) EndProgress() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearProgressLocked()
	l.progressLine = ""
}

// clearProgressLocked wipes the live line if one is drawn. Must be called
// with l.mu held.
func (l *Logger) clearProgressLocked() {
	if l.progressLine == "" {
		return
	}
	fmt.Fprint(l.out, "\r\x1b[2K")
}

func (l *Logger) redrawProgressLocked() {
	if l.progressLine == "" {
		return
	}
	fmt.Fprint(l.out, l.progressLine)
}
