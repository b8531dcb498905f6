// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/build"
	"github.com/xchdev/explorer/clvm"
	"github.com/xchdev/explorer/coinset"
	"github.com/xchdev/explorer/internal/cfgutil"
	"github.com/xchdev/explorer/metadata"
	"github.com/xchdev/explorer/offer"
	"github.com/xchdev/explorer/parser"
	"github.com/xchdev/explorer/wire"
)

const (
	defaultConfigFilename = "xchexplorer.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "xchexplorer.log"
)

var (
	defaultAppDataDir = btcutil.AppDataDir("xchexplorer", false)
	defaultConfigFile = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
)

// errEarlyExit is returned when the version or the subsystems were printed and
// there is nothing left to do.
var errEarlyExit = errors.New("nothing left to do")

type config struct {
	// General application behavior
	ConfigFile     *cfgutil.ExplicitString `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion    bool                    `short:"V" long:"version" description:"Display version information and exit"`
	DebugLevel     string                  `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	LogDir         string                  `long:"logdir" description:"Directory to log output"`
	NoLogFile      bool                    `long:"nologfile" description:"Only log to standard error"`
	MaxLogFiles    int                     `long:"maxlogfiles" description:"Maximum number of rolled log files to keep"`
	MaxLogFileSize int                     `long:"maxlogfilesize" description:"Maximum log file size in MB"`
	LogCompressor  string                  `long:"logcompressor" description:"Compressor for rolled log files" choice:"gzip" choice:"zstd"`

	// Endpoints
	TestNet           bool             `long:"testnet" description:"Use the testnet11 coinset endpoints unless they are given explicitly"`
	Coinset           *cfgutil.URLFlag `long:"coinset" description:"Coinset full node API endpoint"`
	CoinsetWebsocket  *cfgutil.URLFlag `long:"coinsetws" description:"Coinset event stream; derived from --coinset when that is given"`
	Dexie             *cfgutil.URLFlag `long:"dexie" description:"Dexie API endpoint used to name CAT assets"`
	MintGarden        *cfgutil.URLFlag `long:"mintgarden" description:"MintGarden API endpoint used to name NFTs"`
	Timeout           time.Duration    `long:"timeout" description:"Timeout of each API request"`
	RequestsPerSecond float64          `long:"rps" description:"Maximum coinset requests per second, zero for no limit"`
	NoDecorate        bool             `long:"nodecorate" description:"Do not look up asset names and NFT metadata"`

	// Parser options
	MaxCost       uint64   `long:"maxcost" description:"Maximum execution cost of a single spend"`
	AllowBackrefs bool     `long:"allowbackrefs" description:"Accept serialized programs that use back references"`
	FailFast      bool     `long:"failfast" description:"Fail the whole parse when a spend cannot be run"`
	OfferDicts    []string `long:"offerdict" description:"Register the offer dictionary segment of a version, given as VERSION:FILE -- May be repeated"`
}

// defaultConfig returns the configuration before any file or flag is
// applied.
func defaultConfig() config {
	return config{
		ConfigFile:       cfgutil.NewExplicitString(defaultConfigFile),
		DebugLevel:       defaultLogLevel,
		LogDir:           defaultLogDir,
		MaxLogFiles:      build.DefaultMaxLogFiles,
		MaxLogFileSize:   build.DefaultMaxLogFileSize,
		LogCompressor:    build.DefaultLogCompressor,
		Coinset:          cfgutil.NewURLFlag(coinset.DefaultURL, "https"),
		CoinsetWebsocket: cfgutil.NewURLFlag(coinset.DefaultWebsocketURL, "wss"),
		Dexie:            cfgutil.NewURLFlag(metadata.DefaultDexieURL, "https"),
		MintGarden:       cfgutil.NewURLFlag(metadata.DefaultMintGardenURL, "https"),
		Timeout:          coinset.DefaultTimeout,
		MaxCost:          clvm.MaxBlockCost,
	}
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace":
		fallthrough
	case "debug":
		fallthrough
	case "info":
		fallthrough
	case "warn":
		fallthrough
	case "error":
		fallthrough
	case "critical":
		return true
	}
	return false
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// loadConfig initializes the config using a config file and command line
// options, and returns the parser the commands are registered on.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The last step is left to the caller, which runs the selected command as
// part of it.  Command line options always take precedence.
func loadConfig(args []string, stdout io.Writer) (*config, *flags.Parser,
	error) {

	cfg := defaultConfig()

	// A config file in the current directory takes precedence.
	exists, err := cfgutil.FileExists(defaultConfigFilename)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		cfg.ConfigFile.Value = defaultConfigFilename
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Commands are not known to
	// this parser, so their names and options are passed over.
	preCfg := defaultConfig()
	preParser := flags.NewParser(&preCfg, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	if preCfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Fprintln(stdout, appName, "version", version())
		return nil, nil, errEarlyExit
	}
	if preCfg.ConfigFile.ExplicitlySet() {
		cfg.ConfigFile.Value = preCfg.ConfigFile.Value
	}
	configFile := cfgutil.CleanAndExpandPath(cfg.ConfigFile.Value)

	// Load additional config from file.
	flagParser := flags.NewParser(
		&cfg, flags.HelpFlag|flags.PassDoubleDash,
	)
	err = flags.NewIniParser(flagParser).ParseFile(configFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, nil, err
		}

		// A missing config file is only reported when one was asked
		// for.
		if preCfg.ConfigFile.ExplicitlySet() {
			return nil, nil, err
		}
	}

	return &cfg, flagParser, nil
}

// finalize validates the parsed config, applies options that depend on
// others and sets up logging.  Special show command to list supported
// subsystems is handled here.
func (cfg *config) finalize() error {
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		return errEarlyExit
	}

	if cfg.TestNet {
		if !cfg.Coinset.ExplicitlySet() {
			cfg.Coinset.Value = coinset.TestnetURL
		}
		if !cfg.CoinsetWebsocket.ExplicitlySet() &&
			!cfg.Coinset.ExplicitlySet() {

			cfg.CoinsetWebsocket.Value = coinset.TestnetWebsocketURL
		}
	}

	// An explicit API endpoint carries its event stream unless that is
	// given too.
	if cfg.Coinset.ExplicitlySet() &&
		!cfg.CoinsetWebsocket.ExplicitlySet() {

		ws, err := cfgutil.WebsocketURL(cfg.Coinset.Value, "ws")
		if err != nil {
			return err
		}
		cfg.CoinsetWebsocket.Value = ws
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.RequestsPerSecond < 0 {
		return fmt.Errorf("rps must not be negative, got %v",
			cfg.RequestsPerSecond)
	}
	if cfg.MaxCost == 0 {
		return errors.New("maxcost must be positive")
	}
	if cfg.MaxLogFiles < 0 || cfg.MaxLogFileSize <= 0 {
		return fmt.Errorf("invalid log rotation: %d files of %d MB",
			cfg.MaxLogFiles, cfg.MaxLogFileSize)
	}

	if err := registerOfferDicts(cfg.OfferDicts); err != nil {
		return err
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	if cfg.NoLogFile {
		return nil
	}

	cfg.LogDir = cfgutil.CleanAndExpandPath(cfg.LogDir)
	logCfg := &build.FileLoggerConfig{
		Compressor:     cfg.LogCompressor,
		MaxLogFiles:    cfg.MaxLogFiles,
		MaxLogFileSize: cfg.MaxLogFileSize,
	}
	return initLogRotator(logCfg, filepath.Join(cfg.LogDir, defaultLogFilename))
}

// registerOfferDicts reads and registers offer dictionary segments given as
// VERSION:FILE.
func registerOfferDicts(args []string) error {
	for _, arg := range args {
		v, file, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("invalid offer dictionary %q, want "+
				"VERSION:FILE", arg)
		}
		ver, err := strconv.ParseUint(v, 10, 16)
		if err != nil || ver == 0 {
			return fmt.Errorf("invalid offer dictionary version %q", v)
		}

		segment, err := os.ReadFile(cfgutil.CleanAndExpandPath(file))
		if err != nil {
			return err
		}

		// Segments are distributed either raw or hex encoded.
		if decoded, err := wire.DecodeHex(
			strings.TrimSpace(string(segment)),
		); err == nil {
			segment = decoded
		}
		offer.RegisterDictionary(uint16(ver), segment)
	}
	return nil
}

// parseOptions returns the parser options selected by the config.
func (cfg *config) parseOptions() []parser.Option {
	opts := []parser.Option{parser.WithMaxCost(cfg.MaxCost)}
	if cfg.AllowBackrefs {
		opts = append(opts, parser.WithBackrefs())
	}
	if cfg.FailFast {
		opts = append(opts, parser.WithFailFast())
	}
	return opts
}

// coinsetClient returns a client of the configured coinset endpoint.
func (cfg *config) coinsetClient() (*coinset.Client, error) {
	return coinset.New(&coinset.Config{
		URL:               cfg.Coinset.Value,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
}

// decorator returns the metadata decorator of the configured endpoints, or
// nil when decoration is disabled.
func (cfg *config) decorator() (*metadata.Decorator, error) {
	if cfg.NoDecorate {
		return nil, nil
	}

	mintGarden, err := metadata.NewMintGarden(&metadata.MintGardenConfig{
		HTTPConfig: metadata.HTTPConfig{
			URL:     cfg.MintGarden.Value,
			Timeout: cfg.Timeout,
		},
	})
	if err != nil {
		return nil, err
	}

	return &metadata.Decorator{
		Tokens: cfg.dexie(),
		NFTs:   mintGarden,
	}, nil
}

// dexie returns a token list client of the configured endpoint.
func (cfg *config) dexie() *metadata.Dexie {
	return metadata.NewDexie(&metadata.DexieConfig{
		HTTPConfig: metadata.HTTPConfig{
			URL:     cfg.Dexie.Value,
			Timeout: cfg.Timeout,
		},
	})
}
