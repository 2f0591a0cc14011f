// internal/logger/logger.go
package logger

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level file names. The dashboard serves these back under /logs/{level}.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Config controls where log files go and how they rotate.
type Config struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Stdout     bool // mirror to stdout/stderr
}

// Logger provides leveled logging (info/warning/error) to rotating files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	dir        string
	files      []*lumberjack.Logger
	mu         sync.Mutex
}

// New creates a Logger and ensures the log directory exists.
func New(cfg Config) (*Logger, error) {
	if cfg.Dir == "" {
		return nil, errors.New("logger: directory required")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, err
	}

	l := &Logger{dir: cfg.Dir}

	infoFile := l.rotating(cfg, InfoFile)
	warningFile := l.rotating(cfg, WarningFile)
	errorFile := l.rotating(cfg, ErrorFile)

	var infoW, warningW, errorW io.Writer = infoFile, warningFile, errorFile
	if cfg.Stdout {
		infoW = io.MultiWriter(os.Stdout, infoFile)
		warningW = io.MultiWriter(os.Stdout, warningFile)
		errorW = io.MultiWriter(os.Stderr, errorFile)
	}

	l.setup(infoW, warningW, errorW)
	return l, nil
}

// NewWriter creates a Logger writing every level to w. No files, no rotation.
func NewWriter(w io.Writer) *Logger {
	l := &Logger{}
	l.setup(w, w, w)
	return l
}

func (l *Logger) rotating(cfg Config, name string) *lumberjack.Logger {
	f := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, name),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	l.files = append(l.files, f)
	return f
}

// setup initializes the per-level loggers.
func (l *Logger) setup(info, warning, errw io.Writer) {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds
	l.infoLog = log.New(info, "INFO    ", flags)
	l.warningLog = log.New(warning, "WARNING ", flags)
	l.errorLog = log.New(errw, "ERROR   ", flags)
}

// Dir returns the log directory, or "" for a writer-backed logger.
func (l *Logger) Dir() string {
	return l.dir
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Printf(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Printf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Printf(format, v...)
}

// Close closes the log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var last error
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			last = err
		}
	}
	return last
}
