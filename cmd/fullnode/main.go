// Command fullnode wires storage, the secondary indices and the consensus
// engine into a single process. It has no p2p or RPC surface: vertices only
// ever enter through --import, a file of length-prefixed encoded vertices,
// the closest headless analogue to the teacher's addblock import tool for a
// system with no peer network to receive them from.
package main

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/consensus"
	"github.com/dagledger/fullnode/dagconfig"
	"github.com/dagledger/fullnode/indices"
	"github.com/dagledger/fullnode/logger"
	"github.com/dagledger/fullnode/storage"
	"github.com/dagledger/fullnode/vertex"
)

var log = logger.Get("FLND")

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("fullnode exiting")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "invalid --loglevel")
	}

	settings := settingsForNetwork(cfg.Network)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return errors.Wrap(err, "creating data directory")
	}
	store, err := storage.OpenLevelDB(cfg.DataDir, settings)
	if err != nil {
		return errors.Wrap(err, "opening store")
	}
	defer store.Close()

	cons := consensus.New(settings, store)
	cons.Indices = indices.NewManager()

	log.Info().Str("network", cfg.Network).Str("datadir", cfg.DataDir).
		Str("besthead", cons.BestHead().String()).Msg("fullnode ready")

	if cfg.Import != "" {
		return importVertices(cons, cfg.Import)
	}

	// With no p2p layer to keep the process alive for, a run with nothing
	// to import has nothing left to do.
	log.Info().Msg("no --import file given, nothing to do")
	return nil
}

func settingsForNetwork(network string) *dagconfig.Settings {
	if network == "unittest" {
		return dagconfig.UnittestSettings()
	}
	return dagconfig.MainnetSettings()
}

// importVertices streams length-prefixed encoded vertices from path through
// the consensus engine in order, the way the teacher's blockImporter streams
// a bootstrap.dat-style file into blockdag. There is no read/process
// goroutine split here: each vertex must be validated and linked before the
// next one can reference it as a parent, so the two stages can't run ahead
// of each other the way independent block reads could.
func importVertices(cons *consensus.Consensus, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening import file")
	}
	defer f.Close()

	var processed, imported int
	for {
		v, err := readVertex(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "reading vertex %d from %s", processed, path)
		}
		processed++

		if cons.State(v.Hash) != consensus.Unknown {
			continue // already known, e.g. a re-import of an overlapping file
		}
		if err := cons.ProcessVertex(v); err != nil {
			return errors.Wrapf(err, "processing vertex %s", v.Hash)
		}
		imported++
	}

	log.Info().Int("processed", processed).Int("imported", imported).
		Str("besthead", cons.BestHead().String()).Msg("import complete")
	return nil
}

// readVertex reads one <uint32 length><encoded vertex> record and recomputes
// its hash, mirroring readBlock's "length then payload" framing.
func readVertex(r io.Reader) (*vertex.Vertex, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	v, err := codec.Decode(buf)
	if err != nil {
		return nil, errors.Wrap(err, "decoding vertex")
	}
	h, err := codec.Hash(v)
	if err != nil {
		return nil, errors.Wrap(err, "hashing decoded vertex")
	}
	v.Hash = h
	return v, nil
}
