package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger. It is a no-op logger until Init runs.
	Log = zap.NewNop()
	// Sugar is the sugared form of Log.
	Sugar = Log.Sugar()
)

// Config holds logger configuration.
type Config struct {
	Level  string
	Format string // "console" or "json"
}

// Init builds the global logger. An unknown level falls back to info.
func Init(cfg Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	Replace(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
	return nil
}

// Replace swaps the global logger and its sugared form.
func Replace(l *zap.Logger) {
	Log = l
	Sugar = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() error {
	return Log.Sync()
}

// WithRequestID returns a logger tagged with the request ID.
func WithRequestID(requestID string) *zap.Logger {
	return Log.With(zap.String("request_id", requestID))
}

// WithExperiment returns a logger tagged with the experiment slug.
func WithExperiment(slug string) *zap.Logger {
	return Log.With(zap.String("experiment", slug))
}

func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }
