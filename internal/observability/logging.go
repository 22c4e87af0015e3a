package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/support-tracker/internal/config"
)

// NewLogger creates the service logger. Development environments get a
// console encoder and DPanic panics; everything else logs JSON.
func NewLogger(app config.AppConfig, cfg config.LoggerConfig) (*zap.Logger, error) {
	return loggerConfig(app, cfg).Build()
}

// NewCLILogger writes human-readable records to stderr so command output
// on stdout stays clean.
func NewCLILogger(level string) *zap.Logger {
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		parseLevel(level, zapcore.WarnLevel),
	))
}

func loggerConfig(app config.AppConfig, cfg config.LoggerConfig) zap.Config {
	dev := isDevelopment(app.Env)
	encoding := "json"
	if dev {
		encoding = "console"
	}

	fields := map[string]interface{}{"service": app.Name}
	if app.Version != "" {
		fields["version"] = app.Version
	}
	if app.Env != "" {
		fields["env"] = app.Env
	}

	return zap.Config{
		Level:       zap.NewAtomicLevelAt(parseLevel(cfg.Level, zapcore.InfoLevel)),
		Development: dev,
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "message",
			LevelKey:   "level",
			TimeKey:    "ts",
			NameKey:    "logger",
			EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(l.String())
			},
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		InitialFields:    fields,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

func isDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local":
		return true
	}
	return false
}

func parseLevel(raw string, fallback zapcore.Level) zapcore.Level {
	level := fallback
	if err := level.Set(strings.ToLower(raw)); err != nil {
		return fallback
	}
	return level
}
