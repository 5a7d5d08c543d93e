package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var global *zap.SugaredLogger

// Init builds the process logger once. With a file configured the output
// rotates through lumberjack; otherwise it goes to stderr.
func Init(level, file string, maxSizeMB, maxBackups int) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if file != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		})
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), sink, lvl)
	z := zap.New(core)
	zap.ReplaceGlobals(z)
	global = z.Sugar()
	return nil
}

// Logger returns a non-nil *SugaredLogger even before Init has run.
func Logger() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}
