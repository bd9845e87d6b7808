package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

type LogMode string

const (
	LogModeDefault  LogMode = "default"
	LogModeJSON     LogMode = "json"
	LogModeCombined LogMode = "combined"
)

const (
	JobIDFieldName      = "JobID"
	ResourceIDFieldName = "ResourceID"
	OwnerFieldName      = "Owner"
	RequestIDFieldName  = "RequestID"
)

func ParseLogMode(s string) (LogMode, error) {
	for _, mode := range []LogMode{LogModeDefault, LogModeJSON, LogModeCombined} {
		if strings.EqualFold(string(mode), s) {
			return mode, nil
		}
	}
	return LogModeDefault, fmt.Errorf("%q is an invalid log-mode (valid modes: %q)",
		s, []LogMode{LogModeDefault, LogModeJSON, LogModeCombined})
}

var stderr = struct{ io.Writer }{os.Stderr}

func init() { //nolint:gochecknoinits // init with zerolog is idiomatic
	configureLogging(logModeFromEnv())
}

func logModeFromEnv() LogMode {
	mode, err := ParseLogMode(os.Getenv("LOG_TYPE"))
	if err != nil {
		return LogModeDefault
	}
	return mode
}

type tTesting interface {
	zerolog.TestingLog
	Cleanup(f func())
}

// ConfigureTestLogging allows logs to be associated with individual tests
func ConfigureTestLogging(t tTesting) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger
	configureLogging(LogModeDefault, zerolog.ConsoleTestWriter(t))
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})
}

// ConfigureLogging replaces the global logger. Level comes from LOG_LEVEL.
func ConfigureLogging(mode LogMode) {
	configureLogging(mode)
}

func configureLogging(mode LogMode, loggingOptions ...func(w *zerolog.ConsoleWriter)) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(levelFromEnv())

	isTerminal := isatty.IsTerminal(os.Stdout.Fd())

	defaultLogging := func(w *zerolog.ConsoleWriter) {
		w.Out = stderr
		w.NoColor = !isTerminal
		w.TimeFormat = "15:04:05.999 |"
		w.PartsOrder = []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		}
		w.FormatFieldName = func(i interface{}) string {
			return fmt.Sprintf("[%s:", i)
		}
		w.FormatFieldValue = func(i interface{}) string {
			if i == nil {
				i = ""
			}
			return fmt.Sprintf("%s]", i)
		}
	}

	loggingOptions = append([]func(w *zerolog.ConsoleWriter){defaultLogging}, loggingOptions...)
	textWriter := zerolog.NewConsoleWriter(loggingOptions...)

	zerolog.CallerMarshalFunc = shortCaller

	var useLogWriter io.Writer
	switch mode {
	case LogModeJSON:
		useLogWriter = os.Stdout
	case LogModeCombined:
		useLogWriter = zerolog.MultiLevelWriter(textWriter, os.Stdout)
	default:
		useLogWriter = textWriter
	}

	log.Logger = zerolog.New(useLogWriter).With().Timestamp().Caller().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// shortCaller keeps the last two path elements of the file name.
func shortCaller(_ uintptr, file string, line int) string {
	short := file
	separatorCount := 2
	countedSeparators := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			countedSeparators++
			if countedSeparators >= separatorCount {
				short = file[i+1:]
				break
			}
		}
	}
	return short + ":" + strconv.Itoa(line)
}

// ContextWithRequestID returns a context whose logger tags every line with
// the request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	l := log.Ctx(ctx).With().Str(RequestIDFieldName, requestID).Logger()
	return l.WithContext(ctx)
}
