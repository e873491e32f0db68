// Package log owns the process-wide zap logger. Init once in main (or in a
// test), then grab it anywhere with L(). Before Init, L() returns a nop
// logger so library code never has to nil-check.
package log

import (
	"go.uber.org/zap"
)

var base = zap.NewNop()

// Init builds the global logger. prod selects the JSON production config,
// otherwise the human-readable development one.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// L returns the global logger.
func L() *zap.Logger { return base }

// Sync flushes buffered log entries; call it on shutdown.
func Sync() { _ = base.Sync() }
