package witness

import "github.com/btcsuite/btclog"

// log is the subsystem logger used throughout the witness package.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the witness package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
