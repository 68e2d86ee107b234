package main

import (
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultDataDirname = "data"
	defaultNetwork     = "mainnet"
	defaultLogLevel    = "info"
)

// config holds every flag the fullnode binary accepts. It stays deliberately
// thin: no listener addresses, no peer options, since the p2p and RPC
// surfaces this binary would otherwise expose are out of scope here. What
// is left is exactly what's needed to open a store and run vertices
// through the consensus engine.
type config struct {
	DataDir  string `long:"datadir" description:"Directory to store the DAG database in"`
	Network  string `long:"network" description:"Network to validate against: mainnet or unittest" default:"mainnet"`
	LogLevel string `long:"loglevel" description:"Logging level: trace, debug, info, warn, error" default:"info"`
	Import   string `long:"import" description:"Path to a file of length-prefixed encoded vertices to ingest on startup, then exit"`
}

func parseConfig() (*config, error) {
	cfg := &config{
		Network:  defaultNetwork,
		LogLevel: defaultLogLevel,
	}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(".", defaultDataDirname, cfg.Network)
	}

	switch cfg.Network {
	case "mainnet", "unittest":
	default:
		return nil, errors.Errorf("--network must be one of mainnet, unittest, got %q", cfg.Network)
	}

	return cfg, nil
}
