package cliconfig

import (
	"os"

	"github.com/bft-labs/batchclock/pkg/log"
)

// NewLogger builds the stderr logger described by cfg.
func NewLogger(cfg Config) (*log.ZerologAdapter, error) {
	return log.NewZerologAdapter(os.Stderr, log.Format(cfg.LogFormat), cfg.LogLevel)
}
