package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/interval-timer/internal/config"
)

// UILogBufferSize is the capacity of the channel returned by NewUILogChannel
const UILogBufferSize = 256

// Logger is the application logger together with the file it rotates
type Logger struct {
	*log.Logger
	file *lumberjack.Logger
}

// NewUILogChannel returns the channel a UIModel tails for its log pane
func NewUILogChannel() chan string {
	return make(chan string, UILogBufferSize)
}

// New builds the application logger. Entries are written to the rotated file
// named by cfg.File and, when uiLines is non-nil, mirrored onto uiLines.
// An empty cfg.File disables the file.
func New(cfg config.LogConfig, uiLines chan<- string) (*Logger, error) {
	var writers []io.Writer
	l := &Logger{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		writers = append(writers, l.file)
	}
	if uiLines != nil {
		writers = append(writers, NewChannelWriter(uiLines))
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}
	l.Logger = log.New(out, "", log.LstdFlags)
	return l, nil
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ChannelWriter forwards every write as one string. It never blocks: when the
// reader falls behind, lines are dropped.
type ChannelWriter struct {
	ch chan<- string
}

func NewChannelWriter(ch chan<- string) *ChannelWriter {
	if ch == nil {
		panic("ChannelWriter: channel cannot be nil")
	}
	return &ChannelWriter{ch: ch}
}

func (w *ChannelWriter) Write(p []byte) (int, error) {
	select {
	case w.ch <- string(p):
	default:
	}
	return len(p), nil
}
