// Package logging builds the application's zap loggers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-ioc/framework/config"
)

// New returns a logger suited to cfg.App.Env: JSON output in production,
// nothing while testing, and a human-readable console logger otherwise.
// Debug level is enabled only when APP_DEBUG is true outside production.
func New(cfg *config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	switch cfg.App.Env {
	case "production":
		logger, err = zap.NewProduction()
	case "testing":
		return zap.NewNop(), nil
	default:
		zc := zap.NewDevelopmentConfig()
		if !cfg.App.Debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
		logger, err = zc.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("logging: building %s logger: %w", cfg.App.Env, err)
	}
	return logger.With(zap.String("app", cfg.App.Name)), nil
}

// ForRequest annotates base with the id of the request being served.
func ForRequest(base *zap.Logger, requestID string) (*zap.Logger, error) {
	return base.With(zap.String("request_id", requestID)), nil
}
