package cmd

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"pharmaevents/config"
)

// newLogger builds the process logger from log.level and log.format.
// "console" uses zap's development encoder, "json" the production one.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "", "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: console, json)", cfg.Format)
	}

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = atomic

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
