package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Component identifiers for color-coded logging
type Component string

const (
	ComponentServer   Component = "PAGE-SERVER"
	ComponentResolver Component = "RESOLVER"
	ComponentRegistry Component = "REGISTRY"
	ComponentPredict  Component = "PREDICT"
	ComponentWatcher  Component = "WATCHER"
	ComponentStorage  Component = "STORAGE"
	ComponentCLI      Component = "CLI"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorGreen   = "\033[32m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorYellow  = "\033[33m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
	colorOrange  = "\033[38;5;208m"
)

// componentColors maps components to their display colors
var componentColors = map[Component]string{
	ComponentServer:   colorWhite,
	ComponentResolver: colorYellow,
	ComponentRegistry: colorBlue,
	ComponentPredict:  colorMagenta,
	ComponentWatcher:  colorCyan,
	ComponentStorage:  colorGreen,
	ComponentCLI:      colorOrange,
}

var (
	levelMu sync.RWMutex
	level   = slog.LevelInfo
)

// SetLevel sets the minimum level for every logger created by this package.
// Unknown names fall back to info.
func SetLevel(name string) {
	var l slog.Level
	switch strings.ToLower(name) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	levelMu.Lock()
	level = l
	levelMu.Unlock()
}

func minLevel() slog.Level {
	levelMu.RLock()
	defer levelMu.RUnlock()
	return level
}

// ColorHandler is a custom slog handler that adds color-coded component output
type ColorHandler struct {
	slog.Handler
	out       io.Writer
	mu        *sync.Mutex
	component Component
	useColors bool
	attrs     []slog.Attr
}

// NewColorHandler creates a new color-coded handler
func NewColorHandler(out io.Writer, component Component, useColors bool) *ColorHandler {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return &ColorHandler{
		Handler:   slog.NewTextHandler(out, opts),
		out:       out,
		mu:        &sync.Mutex{},
		component: component,
		useColors: useColors,
	}
}

// Enabled reports whether the record level passes the package level.
func (h *ColorHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= minLevel()
}

// Handle processes a log record with color-coded output
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	color := componentColors[h.component]
	reset := colorReset
	if !h.useColors {
		color = ""
		reset = ""
	}

	// Format: emoji [COMPONENT] message attrs...
	fmt.Fprintf(h.out, "%s%s [%s]%s %s", color, getLevelEmoji(r.Level), h.component, reset, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(h.out, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.out, " %s=%v", a.Key, a.Value)
		return true
	})
	fmt.Fprintln(h.out)

	return nil
}

// WithAttrs returns a new handler with the given attributes
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ColorHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		out:       h.out,
		mu:        h.mu,
		component: h.component,
		useColors: h.useColors,
		attrs:     merged,
	}
}

// WithGroup returns a new handler with the given group
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{
		Handler:   h.Handler.WithGroup(name),
		out:       h.out,
		mu:        h.mu,
		component: h.component,
		useColors: h.useColors,
		attrs:     h.attrs,
	}
}

func getLevelEmoji(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\U0001F534" // Red circle
	case level >= slog.LevelWarn:
		return "\U0001F7E1" // Yellow circle
	case level >= slog.LevelInfo:
		return "\U0001F535" // Blue circle
	default:
		return "\U0001F7E3" // Purple circle
	}
}

// Logger wraps slog.Logger with component-specific functionality
type Logger struct {
	*slog.Logger
	component Component
}

// New creates a new component-specific logger
func New(component Component) *Logger {
	useColors := os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
	return NewWithWriter(component, os.Stdout, useColors)
}

// NewWithWriter creates a logger with a custom writer
func NewWithWriter(component Component, w io.Writer, useColors bool) *Logger {
	handler := NewColorHandler(w, component, useColors)
	return &Logger{
		Logger:    slog.New(handler),
		component: component,
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard(component Component) *Logger {
	return NewWithWriter(component, io.Discard, false)
}

// Component returns the component this logger tags its output with.
func (l *Logger) Component() Component {
	return l.component
}

// Success logs a success message
func (l *Logger) Success(msg string, args ...any) {
	l.Info("✅ "+msg, args...)
}

// Failure logs a failed operation that was recovered
func (l *Logger) Failure(msg string, args ...any) {
	l.Warn("❌ "+msg, args...)
}

// Section logs a section header
func (l *Logger) Section(title string) {
	rule := strings.Repeat("═", 50)
	l.Info("")
	l.Info(rule)
	l.Info(" " + title)
	l.Info(rule)
	l.Info("")
}

// Document logs document-related info
func (l *Logger) Document(docID string, msg string, args ...any) {
	l.Info("\U0001F4C4 ["+docID+"] "+msg, args...)
}

// Model logs classifier model info
func (l *Logger) Model(key string, msg string, args ...any) {
	l.Info("\U0001F9E0 ["+key+"] "+msg, args...)
}
