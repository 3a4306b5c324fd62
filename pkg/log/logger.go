package log

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// Only the first line of the stack is needed: "goroutine 123 [running]:".
	minStackBufSize    = 32
	minStackTraceLen   = 12
	goroutinePrefixLen = 10

	consoleTimeFormat = "15:04:05"

	// FormatConsole renders colored human readable lines.
	FormatConsole = "console"
	// FormatJSON renders one JSON object per line.
	FormatJSON = "json"
)

var (
	Logger        zerolog.Logger
	goroutinePool sync.Pool
	level         = zerolog.InfoLevel
	format        = FormatConsole
	output        io.Writer = os.Stderr
)

func init() {
	goroutinePool.New = func() interface{} {
		return make([]byte, minStackBufSize)
	}
	rebuild()
}

// goroutineID extracts the current goroutine ID from a truncated stack header.
func goroutineID() string {
	buf, ok := goroutinePool.Get().([]byte)
	if !ok {
		return "unknown"
	}
	defer goroutinePool.Put(buf) //nolint:staticcheck // buf is a slice, this is the correct usage

	stackLen := runtime.Stack(buf, false)
	if stackLen < minStackTraceLen {
		return "unknown"
	}

	idx := goroutinePrefixLen
	start := idx
	for idx < stackLen && buf[idx] >= '0' && buf[idx] <= '9' {
		idx++
	}

	if idx > start {
		return string(buf[start:idx])
	}
	return "unknown"
}

// rebuild recreates Logger from the current level, format and output.
func rebuild() {
	writer := output
	if format == FormatConsole {
		writer = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: consoleTimeFormat,
		}
	}

	Logger = zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger().
		Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			e.Str("goid", goroutineID())
		}))

	log.Logger = Logger
}

// Configure sets the level (debug, info, warn, error) and the format (console, json).
// Empty values keep the current setting.
func Configure(levelName, formatName string) error {
	if levelName != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(levelName))
		if err != nil || parsed == zerolog.NoLevel {
			return fmt.Errorf("unknown log level %q", levelName)
		}
		level = parsed
	}

	switch strings.ToLower(formatName) {
	case "":
	case FormatConsole, FormatJSON:
		format = strings.ToLower(formatName)
	default:
		return fmt.Errorf("unknown log format %q", formatName)
	}

	rebuild()
	return nil
}

// SetOutput redirects all log output, e.g. into a buffer in tests.
func SetOutput(w io.Writer) {
	output = w
	rebuild()
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	level = zerolog.DebugLevel
	rebuild()
}

// Info logs an info message with goroutine ID.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error logs an error message with goroutine ID.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn logs a warning message with goroutine ID.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug logs a debug message with goroutine ID.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal logs a fatal message with goroutine ID and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
