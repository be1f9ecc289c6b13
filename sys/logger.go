package sys

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// --- Globals & Styles ---

var (
	// Level colors
	infoColor  = color.New()
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	fatalColor = color.New(color.FgRed, color.Bold)
	debugColor = color.New(color.FgHiBlack)

	// Component colors
	componentColors = map[string]*color.Color{
		"DATABASE":  color.New(),
		"REMINDER":  color.New(color.FgMagenta),
		"CACHE":     color.New(color.FgBlue),
		"TRACKER":   color.New(color.FgGreen),
		"SCHEDULER": color.New(color.FgMagenta),
	}

	DefaultTimeFormat = "15:04:05"
	IsSilent          = false
	LogToFile         = false
	Logger            *slog.Logger

	logFile *os.File
	logMu   sync.Mutex
)

// LevelFatal sits above slog.LevelError and is only emitted by LogFatal.
const LevelFatal = slog.LevelError + 4

func init() {
	InitLogger(false, false)
}

// InitLogger initializes the global structured logger
func InitLogger(silent bool, saveToFile bool) {
	logMu.Lock()
	defer logMu.Unlock()

	IsSilent = silent
	LogToFile = saveToFile
	level := slog.LevelInfo
	if strings.ToLower(os.Getenv("DEBUG")) == "true" {
		level = slog.LevelDebug
	}

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writer io.Writer = os.Stdout
	if LogToFile {
		logName := GetProjectName() + ".log"
		if exePath, err := os.Executable(); err == nil {
			logName = filepath.Base(exePath) + ".log"
		}

		f, err := os.OpenFile(logName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", logName, err)
		} else {
			logFile = f
			writer = io.MultiWriter(os.Stdout, NewStripANSIWriter(logFile))
		}
	}

	Logger = slog.New(NewBotLogHandler(writer, &BotLogHandlerOptions{
		Silent: IsSilent,
		Level:  level,
	}))
	slog.SetDefault(Logger)
}

func SetSilentMode(silent bool) {
	InitLogger(silent, LogToFile)
}

// --- Public Logging API ---

func LogInfo(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func LogDebug(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

// LogFatal logs and panics so deferred cleanup in main still runs.
func LogFatal(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	slog.Log(context.Background(), LevelFatal, msg)
	panic(msg)
}

// Component Loggers

func LogDatabase(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "database"))
}

func LogReminder(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "reminder"))
}

func LogCache(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "cache"))
}

func LogTracker(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "tracker"))
}

func LogScheduler(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "scheduler"))
}

// --- Log Handler Implementation ---

type BotLogHandlerOptions struct {
	Silent bool
	Level  slog.Leveler
}

type BotLogHandler struct {
	w     io.Writer
	opts  *BotLogHandlerOptions
	attrs []slog.Attr
	mu    *sync.Mutex
}

func NewBotLogHandler(w io.Writer, opts *BotLogHandlerOptions) *BotLogHandler {
	if opts == nil {
		opts = &BotLogHandlerOptions{Level: slog.LevelInfo}
	}
	return &BotLogHandler{
		w:    w,
		opts: opts,
		mu:   &sync.Mutex{},
	}
}

func (h *BotLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Silent {
		return false
	}
	return level >= h.opts.Level.Level()
}

func (h *BotLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Silent {
		return nil
	}

	timeStr := time.Now().Format(DefaultTimeFormat)
	levelStr, levelColor := levelStyle(r.Level)

	component := ""
	var extra []string
	collect := func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return true
		}
		extra = append(extra, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	msg := r.Message
	if len(extra) > 0 {
		msg += " " + strings.Join(extra, " ")
	}

	fmt.Fprintf(h.w, "%s", timeStr)

	if component != "" {
		if levelStr != "INFO" {
			fmt.Fprintf(h.w, " %s", levelColor.Sprintf("[%s]", levelStr))
		}
		fmt.Fprintf(h.w, " %s\n", colorizeWithResets(getComponentColor(component), fmt.Sprintf("[%s] %s", component, msg)))
		return nil
	}

	fmt.Fprintf(h.w, " %s\n", colorizeWithResets(levelColor, fmt.Sprintf("[%s] %s", levelStr, msg)))
	return nil
}

func (h *BotLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *BotLogHandler) WithGroup(string) slog.Handler { return h }

// --- Formatting Helpers ---

func levelStyle(level slog.Level) (string, *color.Color) {
	switch {
	case level >= LevelFatal:
		return "FATAL", fatalColor
	case level >= slog.LevelError:
		return "ERROR", errorColor
	case level >= slog.LevelWarn:
		return "WARN", warnColor
	case level >= slog.LevelInfo:
		return "INFO", infoColor
	default:
		return "DEBUG", debugColor
	}
}

func getComponentColor(name string) *color.Color {
	if c, ok := componentColors[name]; ok {
		return c
	}
	return color.New(color.FgCyan)
}

func colorizeWithResets(c *color.Color, text string) string {
	if !strings.Contains(text, "\x1b[0m") {
		return c.Sprint(text)
	}

	marker := "@@@MSG@@@"
	wrapped := c.Sprint(marker)
	idx := strings.Index(wrapped, marker)
	if idx <= 0 {
		return text
	}
	startSeq := wrapped[:idx]

	return c.Sprint(strings.ReplaceAll(text, "\x1b[0m", "\x1b[0m"+startSeq))
}

// --- ANSI Stripper ---

type StripANSIWriter struct {
	w  io.Writer
	re *regexp.Regexp
}

func NewStripANSIWriter(w io.Writer) *StripANSIWriter {
	return &StripANSIWriter{
		w:  w,
		re: regexp.MustCompile(`\x1b\[[0-9;]*m`),
	}
}

func (s *StripANSIWriter) Write(p []byte) (n int, err error) {
	_, err = s.w.Write(s.re.ReplaceAll(p, nil))
	return len(p), err
}
