// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"sort"

	"github.com/btcsuite/btclog"
	"github.com/xchdev/explorer/build"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/coinset"
	"github.com/xchdev/explorer/metadata"
	"github.com/xchdev/explorer/offer"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/puzzles"
)

// logWriter implements an io.Writer that outputs to both standard error and
// the write-end pipe of an initialized log rotator.  Standard output is kept
// for command results.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsystem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file.  This must be performed early during application startup by
// calling initLogRotator.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.  The backend must not be used before the log rotator has
	// been initialized, or data races and/or nil pointer dereferences will
	// occur.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator = build.NewRotatingLogWriter()

	log        = build.NewSubLogger("XCHX", backendLog.Logger)
	clvmLog    = build.NewSubLogger("CLVM", backendLog.Logger)
	parserLog  = build.NewSubLogger("PRSR", backendLog.Logger)
	puzzlesLog = build.NewSubLogger("PZZL", backendLog.Logger)
	offerLog   = build.NewSubLogger("OFFR", backendLog.Logger)
	coinsetLog = build.NewSubLogger("CNST", backendLog.Logger)
	metaLog    = build.NewSubLogger("META", backendLog.Logger)
)

// Initialize package-global logger variables.
func init() {
	clvm.UseLogger(clvmLog)
	parser.UseLogger(parserLog)
	puzzles.UseLogger(puzzlesLog)
	offer.UseLogger(offerLog)
	coinset.UseLogger(coinsetLog)
	metadata.UseLogger(metaLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"XCHX": log,
	"CLVM": clvmLog,
	"PRSR": parserLog,
	"PZZL": puzzlesLog,
	"OFFR": offerLog,
	"CNST": coinsetLog,
	"META": metaLog,
}

// initLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotator variables are used.
func initLogRotator(cfg *build.FileLoggerConfig, logFile string) error {
	return logRotator.InitLogRotator(cfg, logFile)
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsystems for stable display.
	sort.Strings(subsystems)
	return subsystems
}

// pickNoun returns the singular or plural form of a noun depending
// on the count n.
func pickNoun(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
