// Package logger provides the zap-backed run log. Every invocation writes a
// timestamped log file under the configured log directory and, in debug
// mode, mirrors the same lines to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger bound to a single run log file.
type Logger struct {
	*zap.SugaredLogger
	file    *os.File
	runID   string
	console *console
}

// console is the debug mirror. It can be muted while another component
// owns the terminal.
type console struct {
	mu    sync.Mutex
	w     io.Writer
	muted int
}

func (c *console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted > 0 {
		return len(p), nil
	}
	return c.w.Write(p)
}

func (c *console) Sync() error { return nil }

// New creates a logger that writes to <dir>/zap-<ts>.log. When debug is set
// the same records are also written to stderr.
func New(dir string, debug bool) (*Logger, error) {
	var mirror io.Writer
	if debug {
		mirror = os.Stderr
	}
	return newLogger(dir, mirror)
}

func newLogger(dir string, mirror io.Writer) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	ts := time.Now().Format("20060102-150405")
	logPath := filepath.Join(dir, fmt.Sprintf("zap-%s.log", ts))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.DebugLevel),
	}
	var con *console
	if mirror != nil {
		con = &console{w: mirror}
		cores = append(cores, zapcore.NewCore(enc, con, zapcore.DebugLevel))
	}

	runID := uuid.NewString()
	base := zap.New(zapcore.NewTee(cores...)).With(zap.String("run", runID))

	return &Logger{
		SugaredLogger: base.Sugar(),
		file:          f,
		runID:         runID,
		console:       con,
	}, nil
}

// NewDiscard returns a logger that drops everything. Used by tests and when
// the log directory cannot be created.
func NewDiscard() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// LogPath returns the path of the current log file, or empty string if discarded.
func (l *Logger) LogPath() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Name()
}

// RunID returns the identifier attached to every record of this run.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Quiet stops mirroring records to the console until the returned
// function is called. The log file keeps every record. Calls nest.
func (l *Logger) Quiet() (restore func()) {
	if l == nil || l.console == nil {
		return func() {}
	}
	c := l.console
	c.mu.Lock()
	c.muted++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.muted--
			c.mu.Unlock()
		})
	}
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return NewDiscard()
	}
	return l
}

// LatestLogPath returns the path to the most recent run log in dir.
// Returns "" if no logs exist.
func LatestLogPath(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	// ReadDir returns sorted by name; zap-<ts> logs sort chronologically.
	latest := ""
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".log" {
			latest = filepath.Join(dir, e.Name())
		}
	}
	return latest
}
