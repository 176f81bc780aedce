package database

import "github.com/Gobusters/ectologger"

var testLogger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
