package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gatehouse/internal/constants"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides leveled logging with optional file output and daily
// rotation. Log files are named by the Unix timestamp of midnight UTC of
// the day they cover.
type Logger struct {
	mu            sync.Mutex
	level         string
	logDir        string   // empty = stdout only
	file          *os.File // open handle for the current day
	currentDay    int      // day tracker for rotation (year*1000 + yday)
	writeToStdout bool
}

// Options configures the logger behavior.
type Options struct {
	Level         string
	LogDir        string // if set, enables file logging
	WriteToStdout bool
}

// New creates a logger that writes to stdout only.
func New(level string) *Logger {
	return NewWithOptions(Options{Level: level, WriteToStdout: true})
}

// NewWithOptions creates a logger with full configuration.
func NewWithOptions(opts Options) *Logger {
	level := opts.Level
	if _, ok := levelOrder[level]; !ok {
		level = LevelDebug
	}

	l := &Logger{
		level:         level,
		logDir:        opts.LogDir,
		writeToStdout: opts.WriteToStdout,
	}
	if opts.LogDir != "" {
		l.currentDay = dayKey(time.Now())
	}
	return l
}

// SetLogDir enables or changes file logging. Pass an empty string to
// disable file output.
func (l *Logger) SetLogDir(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closeFileUnsafe()
	l.logDir = dir
	l.currentDay = 0
	if dir != "" {
		l.currentDay = dayKey(time.Now())
	}
}

// SetLevel changes the minimum level that is emitted.
func (l *Logger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := levelOrder[level]; ok {
		l.level = level
	}
}

// Close releases the current log file handle.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeFileUnsafe()
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

func (l *Logger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelOrder[level] < levelOrder[l.level] {
		return
	}

	now := time.Now()
	line := fmt.Sprintf("[%s] %s | %s\n", level, now.Format(constants.LogTimestampFormat), fmt.Sprintf(format, args...))

	if l.writeToStdout {
		fmt.Print(line)
	}
	if l.logDir != "" {
		l.writeToFileUnsafe(now, line)
	}
}

// writeToFileUnsafe appends the line to the current day's file, rotating
// first if the day has changed. Caller must hold the mutex.
func (l *Logger) writeToFileUnsafe(now time.Time, line string) {
	if key := dayKey(now); key != l.currentDay || l.file == nil {
		l.closeFileUnsafe()
		l.currentDay = key

		if err := os.MkdirAll(l.logDir, constants.DirPermissions); err != nil {
			l.fallback("failed to create log directory: %v", err)
			return
		}
		path := filepath.Join(l.logDir, logFilename(now))
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			l.fallback("failed to open log file: %v", err)
			return
		}
		l.file = f
	}

	if _, err := l.file.WriteString(line); err != nil {
		l.fallback("failed to write log file: %v", err)
	}
}

func (l *Logger) closeFileUnsafe() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// fallback reports file-logging failures on stdout so they are not lost.
func (l *Logger) fallback(format string, args ...interface{}) {
	if l.writeToStdout {
		fmt.Printf("[LOGGER_ERROR] "+format+"\n", args...)
	}
}

// dayKey returns a unique key for the day of t (year*1000 + day of year).
func dayKey(t time.Time) int {
	return t.Year()*1000 + t.YearDay()
}

// logFilename names the log file after midnight UTC of the day of t.
func logFilename(t time.Time) string {
	year, month, day := t.UTC().Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf("%d%s", startOfDay.Unix(), constants.LogFileExtension)
}
