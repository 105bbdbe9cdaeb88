package txbuilder

import "github.com/btcsuite/btclog"

// log is the subsystem logger used throughout the txbuilder package.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the txbuilder package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
