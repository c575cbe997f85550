package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	zap *zap.Logger
}

// NewLogger builds a production logger. When logFile is set, entries are
// also written as JSON to a rotated file.
func NewLogger(level, logFile string) (*Logger, error) {
	// convert the text logging level to zap.AtomicLevel
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	// create a new logger configuration
	config := zap.NewProductionConfig()
	// set the level
	config.Level = lvl

	if logFile == "" {
		logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			return nil, err
		}
		return &Logger{zap: logger}, nil
	}

	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(config.EncoderConfig), zapcore.AddSync(rotated), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(config.EncoderConfig), zapcore.AddSync(os.Stdout), lvl),
	)
	return &Logger{zap: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

// New wraps an existing zap logger, e.g. zaptest or zap.NewNop in tests.
func New(z *zap.Logger) *Logger {
	return &Logger{zap: z}
}

// With returns a child logger that adds fields to every entry.
func (l Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.writer().With(fields...)}
}

func (l Logger) Debug(msg string, fields ...zap.Field) {
	l.writer().Debug(msg, fields...)
}

func (l Logger) Info(msg string, fields ...zap.Field) {
	l.writer().Info(msg, fields...)
}

func (l Logger) Warn(msg string, fields ...zapcore.Field) {
	l.writer().Warn(msg, fields...)
}

func (l Logger) Error(msg string, fields ...zap.Field) {
	l.writer().Error(msg, fields...)
}

// Sync flushes buffered entries.
func (l Logger) Sync() error {
	return l.writer().Sync()
}

var nop = zap.NewNop()

// writer falls back to a no-op logger for the zero Logger.
func (l Logger) writer() *zap.Logger {
	if l.zap == nil {
		return nop
	}
	return l.zap
}
