package env

import (
	zap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MakeLogger builds a JSON logger at the named level (debug, info, warn,
// error). An empty level means info.
func MakeLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(lvl)
	logConfig.Encoding = "json"

	return logConfig.Build()
}
