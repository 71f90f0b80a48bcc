package app

import (
	"os"

	"tripndrop/internal/config"
	"tripndrop/internal/logx"
)

// NewLogger returns the process JSON logger at the configured level.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.NewJSON(os.Stdout, cfg.LogLevel).With(logx.Int("pid", os.Getpid()))
}
