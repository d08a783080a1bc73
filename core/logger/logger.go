package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

type leveledLogger struct {
	verbose bool
	mu      sync.RWMutex
	out     *log.Logger
	err     *log.Logger
}

var global = &leveledLogger{
	out: log.New(os.Stdout, "", 0),
	err: log.New(os.Stderr, "", 0),
}

// SetVerbose enables DEBUG output.
func SetVerbose(verbose bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.verbose = verbose
}

// IsVerbose reports whether DEBUG output is enabled.
func IsVerbose() bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.verbose
}

// AddWriter mirrors all levels to an additional writer, typically a log file.
func AddWriter(w io.Writer) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.out = log.New(io.MultiWriter(os.Stdout, w), "", 0)
	global.err = log.New(io.MultiWriter(os.Stderr, w), "", 0)
}

func levelColor(level LogLevel) string {
	switch level {
	case DEBUG:
		return colorGray
	case INFO:
		return colorBlue
	case WARN:
		return colorYellow
	case ERROR:
		return colorRed
	case FATAL:
		return colorPurple
	default:
		return colorWhite
	}
}

func formatMessage(level LogLevel, message string) string {
	timestamp := time.Now().Format("06-01-02 15:04:05")
	return fmt.Sprintf(
		"%s[%s]%s %s%-5s%s %s",
		colorGray, timestamp, colorReset,
		levelColor(level), level.String(), colorReset,
		message,
	)
}

func (ll *leveledLogger) log(level LogLevel, format string, args ...interface{}) {
	ll.mu.RLock()
	if level == DEBUG && !ll.verbose {
		ll.mu.RUnlock()
		return
	}
	target := ll.out
	if level >= ERROR {
		target = ll.err
	}
	ll.mu.RUnlock()

	target.Println(formatMessage(level, fmt.Sprintf(format, args...)))

	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	global.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	global.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	global.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	global.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	global.log(FATAL, format, args...)
}
