package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/support-tracker/internal/config"
)

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		level    string
		dev      bool
		encoding string
		want     zapcore.Level
	}{
		{"production json", "production", "warn", false, "json", zapcore.WarnLevel},
		{"staging json", "staging", "", false, "json", zapcore.InfoLevel},
		{"development console", "development", "debug", true, "console", zapcore.DebugLevel},
		{"bad level falls back", "prod", "loud", false, "json", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := config.AppConfig{Name: "support-tracker", Env: tt.env, Version: "1.2.3"}
			cfg := loggerConfig(app, config.LoggerConfig{Level: tt.level})

			if cfg.Development != tt.dev {
				t.Errorf("Development = %v, want %v", cfg.Development, tt.dev)
			}
			if cfg.Encoding != tt.encoding {
				t.Errorf("Encoding = %q, want %q", cfg.Encoding, tt.encoding)
			}
			if got := cfg.Level.Level(); got != tt.want {
				t.Errorf("Level = %v, want %v", got, tt.want)
			}
			if cfg.InitialFields["service"] != "support-tracker" || cfg.InitialFields["version"] != "1.2.3" {
				t.Errorf("InitialFields = %v", cfg.InitialFields)
			}
		})
	}
}

func TestNewLoggerBuilds(t *testing.T) {
	logger, err := NewLogger(config.AppConfig{Name: "support-tracker", Env: "production"}, config.LoggerConfig{Level: "info"})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("logger level not applied")
	}
}
