// Package apexlog backs the go-logger contracts with github.com/apex/log.
package apexlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	glog "github.com/goliatone/go-logger/glog"
)

// LevelEnv selects the log level of loggers built with FromEnv.
const LevelEnv = "WEBHOOKS_LOG"

// Logger adapts an apex/log Interface to glog.Logger. Trace is logged at
// debug since apex has no trace level.
type Logger struct {
	entry log.Interface
}

func New(entry log.Interface) *Logger {
	if entry == nil {
		entry = log.Log
	}
	return &Logger{entry: entry}
}

// LevelFromEnv reads LevelEnv, defaulting to error.
func LevelFromEnv() log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv(LevelEnv))))
	if err != nil {
		return log.ErrorLevel
	}
	return level
}

// FromEnv builds a logger writing text lines to w at LevelFromEnv.
func FromEnv(w io.Writer) *Logger {
	return New(&log.Logger{Handler: NewTextHandler(w), Level: LevelFromEnv()})
}

func (l *Logger) Trace(msg string, args ...any) { l.with(args).Debug(msg) }
func (l *Logger) Debug(msg string, args ...any) { l.with(args).Debug(msg) }
func (l *Logger) Info(msg string, args ...any)  { l.with(args).Info(msg) }
func (l *Logger) Warn(msg string, args ...any)  { l.with(args).Warn(msg) }
func (l *Logger) Error(msg string, args ...any) { l.with(args).Error(msg) }
func (l *Logger) Fatal(msg string, args ...any) { l.with(args).Fatal(msg) }

func (l *Logger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{entry: l.entry.WithFields(log.Fields(fields))}
}

func (l *Logger) with(args []any) log.Interface {
	if len(args) == 0 {
		return l.entry
	}
	fields := log.Fields{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			fields["!extra"] = args[i]
			break
		}
		fields[key] = args[i+1]
	}
	return l.entry.WithFields(fields)
}

// Provider hands out named loggers that share one apex logger.
type Provider struct {
	base log.Interface
}

func NewProvider(base log.Interface) *Provider {
	if base == nil {
		base = log.Log
	}
	return &Provider{base: base}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	return New(p.base.WithField("logger", name))
}

// TextHandler writes one line per entry: time, level initial, message and
// sorted fields.
type TextHandler struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewTextHandler(w io.Writer) *TextHandler {
	if w == nil {
		w = os.Stderr
	}
	return &TextHandler{w: w, now: time.Now}
}

func (h *TextHandler) HandleLog(e *log.Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", h.now().Format("2006-01-02 15:04:05"), strings.ToUpper(e.Level.String()), e.Message)
	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

var (
	_ glog.Logger         = (*Logger)(nil)
	_ glog.FieldsLogger   = (*Logger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
	_ log.Handler         = (*TextHandler)(nil)
)
