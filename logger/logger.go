// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logger provides per-subsystem structured loggers backed by
// zerolog. Each subsystem (codec, script, storage, validator, consensus, ...)
// gets its own named logger from a shared registry, the way this file used
// to wire a logger per subsystem tag onto a custom rotating backend; the
// backend is now zerolog and loggers are created lazily.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// SubsystemTags is an enum of all subsystem identifiers known to the node.
var SubsystemTags = struct {
	CODEC,
	SCRP,
	DAA,
	STOR,
	INDX,
	TRAV,
	VLDT,
	CNSS string
}{
	CODEC: "CODEC",
	SCRP:  "SCRP",
	DAA:   "DAA",
	STOR:  "STOR",
	INDX:  "INDX",
	TRAV:  "TRAV",
	VLDT:  "VLDT",
	CNSS:  "CNSS",
}

var (
	mu         sync.Mutex
	level      = zerolog.InfoLevel
	baseLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	subsystems = map[string]zerolog.Logger{}
)

// Get returns the logger for the given subsystem tag, creating it on first
// use. Unknown tags still get a logger (tagged verbatim) so callers never
// have to special-case registration.
func Get(tag string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := subsystems[tag]; ok {
		return l
	}
	l := baseLogger.With().Str("subsystem", tag).Logger().Level(level)
	subsystems[tag] = l
	return l
}

// SetLevel sets the logging level for every subsystem logger, existing and
// future, mirroring the teacher's SetLogLevels.
func SetLevel(levelName string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	level = parsed
	for tag, l := range subsystems {
		subsystems[tag] = l.Level(parsed)
	}
	return nil
}
