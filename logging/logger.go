package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/solbuild/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when a compilation run is started.
// Each module/package should create its own sub-logger. This allows to create unique logging instances depending on
// the use case.
var GlobalLogger *Logger

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured
// with colors, and unstructured formats.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// structuredLogger describes a logger that will be used to output structured logs to any arbitrary channel.
	structuredLogger zerolog.Logger

	// structuredWriters describes the various channels that the output from the structuredLogger will go to.
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that will be used to stream un-colorized, unstructured output to any
	// arbitrary channel.
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the various channels that the output from the unstructuredLogger will go to.
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that will be used to stream colorized, unstructured output to any
	// arbitrary channel.
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the various channels that the output from the unstructuredColorLogger will
	// go to.
	unstructuredColorWriters []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. By default, a logger that is instantiated
// with this function is not usable until a log channel is added. To add or remove channels that the logger
// streams logs to, call the Logger.AddWriter and Logger.RemoveWriter functions.
func NewLogger(level zerolog.Level) *Logger {
	return &Logger{
		level:                    level,
		structuredLogger:         zerolog.New(nil).Level(zerolog.Disabled),
		structuredWriters:        make([]io.Writer, 0),
		unstructuredLogger:       zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorLogger:  zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredColorWriters: make([]io.Writer, 0),
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	return &Logger{
		level:                    l.level,
		structuredLogger:         l.structuredLogger.With().Str(key, value).Logger(),
		structuredWriters:        l.structuredWriters,
		unstructuredLogger:       l.unstructuredLogger.With().Str(key, value).Logger(),
		unstructuredWriters:      l.unstructuredWriters,
		unstructuredColorLogger:  l.unstructuredColorLogger.With().Str(key, value).Logger(),
		unstructuredColorWriters: l.unstructuredColorWriters,
	}
}

// AddWriter will add a writer to which log output will go to. If the format is structured then the writer will get
// structured output. If the writer is unstructured, then the writer has the choice to either receive colored or
// un-colored output. Note that unstructured writers will be converted into a zerolog.ConsoleWriter to maintain the
// same format across all unstructured output streams.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	switch {
	case format == STRUCTURED:
		if structuredWriters, ok := addUniqueWriter(l.structuredWriters, writer); ok {
			l.structuredWriters = structuredWriters
			l.structuredLogger = l.newStructuredLogger()
		}
	case colored:
		if unstructuredColorWriters, ok := addUniqueWriter(l.unstructuredColorWriters, writer); ok {
			l.unstructuredColorWriters = unstructuredColorWriters
			l.unstructuredColorLogger = l.newUnstructuredLogger(l.unstructuredColorWriters, true)
		}
	default:
		if unstructuredWriters, ok := addUniqueWriter(l.unstructuredWriters, writer); ok {
			l.unstructuredWriters = unstructuredWriters
			l.unstructuredLogger = l.newUnstructuredLogger(l.unstructuredWriters, false)
		}
	}
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. The writer will be either
// removed from the list of structured, unstructured and colored, or unstructured and un-colored writers. If the
// writer does not exist, this function is a no-op
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	switch {
	case format == STRUCTURED:
		l.structuredWriters = removeWriter(l.structuredWriters, writer)
		l.structuredLogger = l.newStructuredLogger()
	case colored:
		l.unstructuredColorWriters = removeWriter(l.unstructuredColorWriters, writer)
		l.unstructuredColorLogger = l.newUnstructuredLogger(l.unstructuredColorWriters, true)
	default:
		l.unstructuredWriters = removeWriter(l.unstructuredWriters, writer)
		l.unstructuredLogger = l.newUnstructuredLogger(l.unstructuredWriters, false)
	}
}

// newStructuredLogger creates the structured logger streaming to every structured writer.
func (l *Logger) newStructuredLogger() zerolog.Logger {
	if len(l.structuredWriters) == 0 {
		return zerolog.New(nil).Level(zerolog.Disabled)
	}
	return zerolog.New(zerolog.MultiLevelWriter(l.structuredWriters...)).Level(l.level).With().Timestamp().Logger()
}

// newUnstructuredLogger creates a console-formatted logger streaming to the provided writers.
func (l *Logger) newUnstructuredLogger(writers []io.Writer, colored bool) zerolog.Logger {
	if len(writers) == 0 {
		return zerolog.New(nil).Level(zerolog.Disabled)
	}
	consoleWriters := make([]io.Writer, 0, len(writers))
	for _, writer := range writers {
		consoleWriters = append(consoleWriters, formatUnstructuredWriter(writer, l.level, colored))
	}
	return zerolog.New(zerolog.MultiLevelWriter(consoleWriters...)).Level(l.level)
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.structuredLogger = l.structuredLogger.Level(level)
	l.unstructuredLogger = l.unstructuredLogger.Level(level)
	l.unstructuredColorLogger = l.unstructuredColorLogger.Level(level)
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages from args and sends an event of the given level to every logger. Stack traces are added
// at debug level and below, and always for panics.
func (l *Logger) log(level zerolog.Level, args ...any) {
	msg, coloredMsg, err, info := buildMsgs(args...)
	withStack := level == zerolog.PanicLevel || l.level <= zerolog.DebugLevel

	// The structured event is sent last so that every channel receives a panic log.
	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	colorLog := l.unstructuredColorLogger.WithLevel(level)
	for _, event := range []*zerolog.Event{structuredLog, unstructuredLog, colorLog} {
		event.Err(err)
		if withStack {
			event.Stack()
		}
		if info != nil {
			event.Any("info", info)
		}
	}
	unstructuredLog.Msg(msg)
	colorLog.Msg(coloredMsg)
	structuredLog.Msg(msg)

	if level == zerolog.PanicLevel {
		panic(msg)
	}
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a non-colorized string that can be
// used for file/structured logging while the second one will be a colorized string that can be used for console
// logging. The error and the StructuredLogInfo can be used to add additional context to log messages
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", "", nil, nil
	}

	// Initialize the base color context, the string buffers and the structured log info object
	colorCtx := colors.Reset
	msg := make([]string, 0)
	coloredMsg := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// If the argument is a color function, switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case error:
			// Note that only one error can be provided for each log message
			err = t
		case *LogBuffer:
			bufferMsg, bufferColoredMsg, _, _ := buildMsgs(t.Args()...)
			msg = append(msg, bufferMsg)
			coloredMsg = append(coloredMsg, bufferColoredMsg)
		default:
			// In the base case, append the object to the two string buffers. The console string buffer will have the
			// current color context applied to it.
			msg = append(msg, fmt.Sprintf("%v", t))
			coloredMsg = append(coloredMsg, colorCtx(t))
		}
	}

	return strings.Join(msg, ""), strings.Join(coloredMsg, ""), err, info
}

// addUniqueWriter appends the writer to writers unless it is already present. The boolean reports whether it was
// added.
func addUniqueWriter(writers []io.Writer, writer io.Writer) ([]io.Writer, bool) {
	for _, w := range writers {
		if w == writer {
			return writers, false
		}
	}
	return append(writers, writer), true
}

// removeWriter returns writers without the given writer.
func removeWriter(writers []io.Writer, writer io.Writer) []io.Writer {
	for i, w := range writers {
		if w == writer {
			return append(writers[:i], writers[i+1:]...)
		}
	}
	return writers
}

// formatUnstructuredWriter will create a custom-formatted zerolog.ConsoleWriter from an arbitrary io.Writer. A
// zerolog.ConsoleWriter is what is used under-the-hood to support unstructured log output. Custom formatting is
// applied to specific fields, timestamps, and the log level strings. If requested, coloring may be applied to the
// log level strings.
func formatUnstructuredWriter(writer io.Writer, level zerolog.Level, colored bool) zerolog.ConsoleWriter {
	// Create the console writer
	consoleWriter := zerolog.ConsoleWriter{Out: writer, NoColor: !colored}

	// Get rid of the timestamp for unstructured output
	consoleWriter.FormatTimestamp = func(i interface{}) string {
		return ""
	}

	// If we are above debug level, we want to get rid of the `module` component when logging to unstructured
	// outputs
	if level > zerolog.DebugLevel {
		consoleWriter.FieldsExclude = []string{"module"}
	}

	// If coloring is disabled, we will return the writer with plain level strings
	if !colored {
		return consoleWriter
	}

	// We will define a custom format for each level
	consoleWriter.FormatLevel = func(i any) string {
		// Create a level object for better switch logic
		level, err := zerolog.ParseLevel(i.(string))
		if err != nil {
			panic(fmt.Sprintf("unable to parse the log level: %v", err))
		}

		// Switch on the level and return a custom, colored string
		switch level {
		case zerolog.TraceLevel:
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return i.(string)
		}
	}

	return consoleWriter
}
