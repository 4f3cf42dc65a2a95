package utils

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled, printf-style logging surface shared by the
// pipeline. DiagnosticSystem and ZapLogger both satisfy it.
type Logger interface {
	Error(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// ZapLogger adapts a zap sugared logger to Logger for machine-readable output
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewJSONLogger builds a JSON zap logger writing to w
func NewJSONLogger(w io.Writer, level DiagnosticLevel) *ZapLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapLevel(level),
	)
	return &ZapLogger{sugar: zap.New(core).Sugar().Named("delegen")}
}

// NewZapLogger wraps an existing sugared logger
func NewZapLogger(sugar *zap.SugaredLogger) *ZapLogger {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return &ZapLogger{sugar: sugar}
}

// With returns a logger that adds key/value pairs to every entry
func (l *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

// Error logs at error level
func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Warn logs at warn level
func (l *ZapLogger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Info logs at info level
func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Debug logs at debug level
func (l *ZapLogger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func zapLevel(level DiagnosticLevel) zapcore.LevelEnabler {
	switch {
	case level >= DiagnosticVerbose:
		return zapcore.DebugLevel
	case level == DiagnosticInfo:
		return zapcore.InfoLevel
	case level == DiagnosticWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

var (
	_ Logger = (*DiagnosticSystem)(nil)
	_ Logger = (*ZapLogger)(nil)
)
