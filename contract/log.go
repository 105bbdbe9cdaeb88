package contract

import "github.com/btcsuite/btclog"

// log is the subsystem logger used throughout the contract package. It
// defaults to the disabled logger so importers are never forced to wire one
// up, matching lnd's per-subsystem logging convention.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the contract package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
