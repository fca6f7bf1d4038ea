// Package logging builds the zap logger shared by every queuecall component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file written under Options.Dir.
const FileName = "queuecall.log"

// Options configure New.
type Options struct {
	// Dir holds the JSON log file. Empty disables the file core.
	Dir string
	// Console receives human-readable output. Nil disables the console core,
	// which the full-screen surface requires.
	Console io.Writer
	// Debug lowers the console level to debug.
	Debug bool
}

// New returns a logger that tees a coloured console core and a JSON file core,
// the path of the log file ("" when Dir is empty) and a cleanup func that
// flushes and closes the file.
func New(opts Options) (*zap.Logger, string, func(), error) {
	var cores []zapcore.Core
	cleanup := func() {}
	path := ""

	if opts.Console != nil {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		level := zapcore.InfoLevel
		if opts.Debug {
			level = zapcore.DebugLevel
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.AddSync(opts.Console),
			level,
		))
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, "", nil, fmt.Errorf("create log dir: %w", err)
		}
		path = filepath.Join(opts.Dir, FileName)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open log file: %w", err)
		}

		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.TimeKey = "timestamp"
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileConfig),
			zapcore.AddSync(file),
			zapcore.DebugLevel,
		))
		cleanup = func() { _ = file.Close() }
	}

	if len(cores) == 0 {
		return zap.NewNop(), path, cleanup, nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	closeAll := cleanup
	cleanup = func() {
		_ = logger.Sync()
		closeAll()
	}
	return logger, path, cleanup, nil
}
