package dlcmgr

import "github.com/btcsuite/btclog"

// log is the subsystem logger used throughout the dlcmgr package.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the dlcmgr package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
