package txbench

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jehiah/go-strftime"
)

type LogLevelType uint8

const (
	LevelVerbose LogLevelType = 50
	LevelDebug   LogLevelType = 40
	LevelInfo    LogLevelType = 30
	LevelWarn    LogLevelType = 20
	LevelError   LogLevelType = 10
	LevelQuiet   LogLevelType = 0
)

const (
	LogTimeFormat = "%Y-%m-%d %H:%M:%S"
)

var (
	nameToLevels = map[string]LogLevelType{
		"verbose": LevelVerbose,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"quiet":   LevelQuiet,
	}
	levelNames = map[LogLevelType]string{
		LevelVerbose: "VERBOSE",
		LevelDebug:   "DEBUG",
		LevelInfo:    "INFO",
		LevelWarn:    "WARN",
		LevelError:   "ERROR",
	}
)

var (
	logLevel  LogLevelType = LevelInfo
	logOutput io.Writer    = os.Stdout
)

func ParseLogLevel(name string) (LogLevelType, error) {
	level, ok := nameToLevels[strings.ToLower(name)]
	if !ok {
		return LevelQuiet, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}

func SetLogLevel(level LogLevelType) {
	logLevel = level
}

func SetLogOutput(w io.Writer) {
	logOutput = w
}

func Flogf(w io.Writer, level LogLevelType, format string, args ...interface{}) {
	if level <= logLevel && level != LevelQuiet {
		fmt.Fprintf(w, "%s [%s] ", strftime.Format(LogTimeFormat, time.Now()), levelNames[level])
		fmt.Fprintf(w, format, args...)
		fmt.Fprintln(w, "")
	}
}

func Logf(level LogLevelType, format string, args ...interface{}) {
	Flogf(logOutput, level, format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logf(LevelError, format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logf(LevelWarn, format, args...)
}

func Infof(format string, args ...interface{}) {
	Logf(LevelInfo, format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logf(LevelDebug, format, args...)
}

func Verbosef(format string, args ...interface{}) {
	Logf(LevelVerbose, format, args...)
}
