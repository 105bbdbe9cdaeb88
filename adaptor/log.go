package adaptor

import "github.com/btcsuite/btclog"

// log is the subsystem logger used throughout the adaptor package.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the adaptor package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
