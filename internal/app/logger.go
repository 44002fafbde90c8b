// ABOUTME: zap logger construction for the CLI verbosity flags
// ABOUTME: Logs go to stderr so stdout stays clean for results and MCP traffic
package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the CLI logger. Quiet discards everything, verbose uses
// zap's development console logger at debug, and the default is a console
// encoder at info.
func NewLogger(verbose, quiet bool) (*zap.Logger, error) {
	if quiet {
		return zap.NewNop(), nil
	}

	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}
