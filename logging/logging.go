// Package logging owns the process-wide zap logger.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

var (
	mu     sync.RWMutex
	sugar  = zap.NewNop().Sugar()
	logger = zap.NewNop()
)

func init() {
	// usable before Init is called (config loading logs through it)
	if l, err := build(false); err == nil {
		logger = l
		sugar = l.Sugar()
	}
}

func build(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg.Build(zap.AddCaller())
}

// Init replaces the global logger. debug switches to the console encoder at debug level.
func Init(debug bool) error {
	l, err := build(debug)
	if err != nil {
		return fmt.Errorf("failed to build zap logger: %w", err)
	}
	mu.Lock()
	logger = l
	sugar = l.Sugar()
	mu.Unlock()
	return nil
}

// L returns the global sugared logger
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Named returns a child logger tagged with a component name
func Named(component string) *zap.SugaredLogger {
	return L().Named(component)
}

// Sync flushes buffered entries; the error is ignored because stdout/stderr can't be synced on most platforms.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

// gormWriter adapts zap to gorm's logger.Writer
type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(strings.TrimSpace(format), args...)
}

// NewGormLogger builds a gorm logger that writes through zap
func NewGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		gormWriter{log: Named("gorm")},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
