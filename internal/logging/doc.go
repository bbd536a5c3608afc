// Package logging provides structured logging for the leviosa tools.
//
// It wraps a package-global zap logger. The logger is silent until
// Initialize is called with a level or LEVIOSA_LOG_LEVEL is set, so library
// callers see no output unless they opt in.
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("Zone selected", zap.String("ip", "192.168.1.40"))
//
// Domain helpers (LogAdvertisement, LogHubRequest, LogHubResponse) keep field
// names consistent across the discovery and hub packages.
package logging
