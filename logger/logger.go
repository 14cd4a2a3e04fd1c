package logger

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	mtx    sync.Mutex
)

func Get() *zap.SugaredLogger {
	mtx.Lock()
	defer mtx.Unlock()

	if logger == nil {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = level
		lg, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		logger = lg
		sugar = lg.Sugar()
	}
	return sugar
}

// SetLevel changes the level of the shared logger, e.g. "debug" or "warn".
func SetLevel(l string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(l)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", l)
	}
	level.SetLevel(lvl)
	return nil
}

func Sync() {
	mtx.Lock()
	defer mtx.Unlock()
	if logger != nil {
		_ = logger.Sync()
	}
}
