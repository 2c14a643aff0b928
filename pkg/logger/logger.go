package logger

import (
	"fmt"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
}

type ZapLogger struct {
	lg *zap.SugaredLogger
}

func New(cfg config.Logger) (ZapLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return ZapLogger{}, fmt.Errorf("parse level error: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if len(cfg.Output) != 0 {
		zapCfg.OutputPaths = cfg.Output
	}

	if len(cfg.ErrOutput) != 0 {
		zapCfg.ErrorOutputPaths = cfg.ErrOutput
	}

	lg, err := zapCfg.Build()
	if err != nil {
		return ZapLogger{}, fmt.Errorf("build logger error: %w", err)
	}

	return ZapLogger{lg: lg.Sugar()}, nil
}

func (zl ZapLogger) Debugf(format string, args ...interface{}) {
	zl.lg.Debugf(format, args...)
}

func (zl ZapLogger) Info(msg string) {
	zl.lg.Info(msg)
}

func (zl ZapLogger) Infof(format string, args ...interface{}) {
	zl.lg.Infof(format, args...)
}

func (zl ZapLogger) Warnf(format string, args ...interface{}) {
	zl.lg.Warnf(format, args...)
}

func (zl ZapLogger) Error(msg string) {
	zl.lg.Error(msg)
}

func (zl ZapLogger) Errorf(format string, args ...interface{}) {
	zl.lg.Errorf(format, args...)
}
