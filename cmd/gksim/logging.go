package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// initializeLogger builds a zap logger from the logging configuration. Empty
// fields fall back to info-level console output.
func initializeLogger(loggingConfig domain.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch strings.ToLower(loggingConfig.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info", "":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", loggingConfig.Level)
	}

	var config zap.Config
	switch strings.ToLower(loggingConfig.Format) {
	case "console", "":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", loggingConfig.Format)
	}
	config.Level = zap.NewAtomicLevelAt(level)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		// Probe the file up front so a bad path fails here instead of on the
		// first log write.
		f, err := os.OpenFile(loggingConfig.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		f.Close()
		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// applyConfigLogging rebuilds the logger from a configuration file's logging
// section. Explicit log flags on the command line win over the file.
func applyConfigLogging(loggingConfig domain.LoggingConfig) error {
	if loggingConfig == (domain.LoggingConfig{}) {
		return nil
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("log-level") || flags.Changed("log-format") || quietFlag {
		return nil
	}
	rebuilt, err := initializeLogger(loggingConfig)
	if err != nil {
		return err
	}
	_ = logger.Sync()
	logger = rebuilt
	return nil
}
