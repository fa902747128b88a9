package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide sugared logger. It discards everything until
// InitLogger is called so packages can log freely from tests.
var Logger = zap.NewNop().Sugar()

// InitLogger builds a console logger. Debug mode switches to the development
// config; otherwise only Info and above are written.
func InitLogger(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableStacktrace = true
	}
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered entries. Errors are ignored: stderr sync fails on
// some terminals and there is nothing useful to do about it.
func Sync() {
	_ = Logger.Sync()
}
