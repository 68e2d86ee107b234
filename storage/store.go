// Package storage provides the content-addressed, on-disk persistence layer
// for vertices and their consensus metadata. It is grounded on the teacher's
// goleveldb-backed database access layer (database/ffldb/ldb), simplified
// down to the single-writer, no-transaction shape the consensus engine's
// own locking already provides.
package storage

import (
	"bytes"
	"encoding/gob"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/dagconfig"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/logger"
	"github.com/dagledger/fullnode/vertex"
)

var log = logger.Get(logger.SubsystemTags.STOR)

// Store is the content-addressed persistence interface every other
// component depends on: put, get, exists, delete, and a full scan, plus an
// in-place metadata update since metadata mutates far more often than the
// underlying vertex does.
type Store interface {
	Put(v *vertex.Vertex, meta *vertex.Metadata) error
	Get(hash hashutil.Hash) (*vertex.Vertex, *vertex.Metadata, error)
	GetMetadata(hash hashutil.Hash) (*vertex.Metadata, error)
	PutMetadata(hash hashutil.Hash, meta *vertex.Metadata) error
	Exists(hash hashutil.Hash) bool
	Delete(hash hashutil.Hash) error
	IterAll(fn func(*vertex.Vertex, *vertex.Metadata) error) error
	Close() error
}

// cacheSize bounds the weak-reference cache. Go has no SetFinalizer-based
// weak map suitable for this use (finalizers don't fire promptly enough
// under GOGC-driven collection to keep "already loaded" semantics), so an
// LRU of bounded size stands in, per SPEC_FULL.md §4.4.
const cacheSize = 4096

type cacheEntry struct {
	v    *vertex.Vertex
	meta *vertex.Metadata
}

// LevelDB is the on-disk Store implementation. Keys are prefixed by the
// last two hex nibbles of the vertex hash (spec.md §4.4's optional sharding
// hint), which buys locality within goleveldb's own SSTable layout without
// requiring a directory-per-shard scheme.
type LevelDB struct {
	mu      sync.RWMutex
	db      *leveldb.DB
	cache   *lru.Cache[hashutil.Hash, *cacheEntry]
	genesis map[hashutil.Hash]*vertex.Vertex
}

// OpenLevelDB opens (creating if absent) a goleveldb database at dir and
// seeds it with settings' genesis vertices, which are kept resident and
// never written to disk per spec.md §4.4.
func OpenLevelDB(dir string, settings *dagconfig.Settings) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "storage: opening leveldb")
	}
	cache, err := lru.New[hashutil.Hash, *cacheEntry](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "storage: constructing cache")
	}

	block, tx1, tx2 := settings.Genesis()
	genesis := map[hashutil.Hash]*vertex.Vertex{
		block.Hash: block,
		tx1.Hash:   tx1,
		tx2.Hash:   tx2,
	}

	store := &LevelDB{db: db, cache: cache, genesis: genesis}
	for _, g := range genesis {
		if err := store.seedGenesisMetadata(g); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// seedGenesisMetadata persists fresh metadata for a genesis vertex the first
// time this database sees it; a database reopened from disk already has it
// and this is a no-op. Genesis metadata lives in the DB like any other
// vertex's, since children/spent_outputs/accumulated_weight all accrue on it
// exactly as on a regular vertex — only its vertex bytes are immutable.
func (s *LevelDB) seedGenesisMetadata(g *vertex.Vertex) error {
	ok, err := s.db.Has(metadataKey(g.Hash), nil)
	if err != nil {
		return errors.Wrap(err, "storage: checking genesis metadata")
	}
	if ok {
		return nil
	}
	mBytes, err := encodeMetadata(vertex.NewMetadata(g.Weight))
	if err != nil {
		return err
	}
	if err := s.db.Put(metadataKey(g.Hash), mBytes, nil); err != nil {
		return errors.Wrap(err, "storage: seeding genesis metadata")
	}
	return nil
}

func shardPrefix(hash hashutil.Hash) string {
	s := hash.String()
	return s[len(s)-2:]
}

func vertexKey(hash hashutil.Hash) []byte {
	return []byte("v/" + shardPrefix(hash) + "/" + hash.String())
}

func metadataKey(hash hashutil.Hash) []byte {
	return []byte("m/" + shardPrefix(hash) + "/" + hash.String())
}

func encodeMetadata(meta *vertex.Metadata) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(meta); err != nil {
		return nil, errors.Wrap(err, "storage: encoding metadata")
	}
	return buf.Bytes(), nil
}

func decodeMetadata(b []byte) (*vertex.Metadata, error) {
	var meta vertex.Metadata
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&meta); err != nil {
		return nil, errors.Wrap(err, "storage: decoding metadata")
	}
	return &meta, nil
}

// Put persists v and its metadata, and populates the cache.
func (s *LevelDB) Put(v *vertex.Vertex, meta *vertex.Metadata) error {
	if _, ok := s.genesis[v.Hash]; ok {
		return ErrGenesisImmutable
	}

	vBytes, err := codec.Encode(v)
	if err != nil {
		return errors.Wrap(err, "storage: encoding vertex")
	}
	mBytes, err := encodeMetadata(meta)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := new(leveldb.Batch)
	batch.Put(vertexKey(v.Hash), vBytes)
	batch.Put(metadataKey(v.Hash), mBytes)
	if err := s.db.Write(batch, nil); err != nil {
		return errors.Wrap(err, "storage: writing vertex")
	}
	s.cache.Add(v.Hash, &cacheEntry{v: v, meta: meta})
	log.Debug().Str("hash", v.Hash.String()).Msg("vertex persisted")
	return nil
}

// Get returns the vertex and metadata stored under hash, serving from the
// weak-reference cache (and the resident genesis set) when possible.
func (s *LevelDB) Get(hash hashutil.Hash) (*vertex.Vertex, *vertex.Metadata, error) {
	if entry, ok := s.cache.Get(hash); ok {
		return entry.v, entry.meta, nil
	}

	if g, ok := s.genesis[hash]; ok {
		meta, err := s.readMetadata(hash)
		if err != nil {
			return nil, nil, err
		}
		s.cache.Add(hash, &cacheEntry{v: g, meta: meta})
		return g, meta, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	vBytes, err := s.db.Get(vertexKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil, ErrTransactionDoesNotExist
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "storage: reading vertex")
	}
	v, err := codec.Decode(vBytes)
	if err != nil {
		return nil, nil, errors.Wrap(err, "storage: decoding vertex")
	}

	mBytes, err := s.db.Get(metadataKey(hash), nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "storage: reading metadata")
	}
	meta, err := decodeMetadata(mBytes)
	if err != nil {
		return nil, nil, err
	}

	s.cache.Add(hash, &cacheEntry{v: v, meta: meta})
	return v, meta, nil
}

// readMetadata reads and decodes hash's metadata straight from the DB,
// bypassing the cache; used when only a vertex's presence in the resident
// genesis map is known to be cache-fresh, not its metadata.
func (s *LevelDB) readMetadata(hash hashutil.Hash) (*vertex.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mBytes, err := s.db.Get(metadataKey(hash), nil)
	if err != nil {
		return nil, errors.Wrap(err, "storage: reading metadata")
	}
	return decodeMetadata(mBytes)
}

// GetMetadata returns only the metadata for hash, without paying for a
// vertex decode; used by consensus propagation which revisits the same
// vertices repeatedly. Genesis metadata is read through like any other
// hash's: only genesis vertex bytes are resident and immutable, not its
// metadata, which accrues children/spent_outputs/accumulated_weight same as
// any other vertex.
func (s *LevelDB) GetMetadata(hash hashutil.Hash) (*vertex.Metadata, error) {
	if entry, ok := s.cache.Get(hash); ok {
		return entry.meta, nil
	}
	if _, ok := s.genesis[hash]; ok {
		return s.readMetadata(hash)
	}
	_, meta, err := s.Get(hash)
	return meta, err
}

// PutMetadata updates metadata in place, per spec.md §4.4's "metadata is
// updated in place" without rewriting the (immutable) vertex bytes. Genesis
// metadata is writable through this path; only Put (new vertex bytes) and
// Delete reject genesis hashes.
func (s *LevelDB) PutMetadata(hash hashutil.Hash, meta *vertex.Metadata) error {
	mBytes, err := encodeMetadata(meta)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Put(metadataKey(hash), mBytes, nil); err != nil {
		return errors.Wrap(err, "storage: writing metadata")
	}

	if entry, ok := s.cache.Get(hash); ok {
		entry.meta = meta
	} else if g, ok := s.genesis[hash]; ok {
		s.cache.Add(hash, &cacheEntry{v: g, meta: meta})
	} else if v, err := s.loadVertexLocked(hash); err == nil {
		s.cache.Add(hash, &cacheEntry{v: v, meta: meta})
	}
	return nil
}

func (s *LevelDB) loadVertexLocked(hash hashutil.Hash) (*vertex.Vertex, error) {
	vBytes, err := s.db.Get(vertexKey(hash), nil)
	if err != nil {
		return nil, err
	}
	return codec.Decode(vBytes)
}

// Exists reports whether hash is known, either as genesis or on disk.
func (s *LevelDB) Exists(hash hashutil.Hash) bool {
	if _, ok := s.genesis[hash]; ok {
		return true
	}
	if _, ok := s.cache.Get(hash); ok {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ok, err := s.db.Has(vertexKey(hash), nil)
	return err == nil && ok
}

// Delete removes hash's vertex and metadata. Genesis vertices cannot be
// deleted.
func (s *LevelDB) Delete(hash hashutil.Hash) error {
	if _, ok := s.genesis[hash]; ok {
		return ErrGenesisImmutable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := new(leveldb.Batch)
	batch.Delete(vertexKey(hash))
	batch.Delete(metadataKey(hash))
	if err := s.db.Write(batch, nil); err != nil {
		return errors.Wrap(err, "storage: deleting vertex")
	}
	s.cache.Remove(hash)
	return nil
}

// IterAll walks every persisted vertex (genesis first, then the on-disk
// set in key order) calling fn for each, stopping at the first error fn
// returns.
func (s *LevelDB) IterAll(fn func(*vertex.Vertex, *vertex.Metadata) error) error {
	for _, g := range s.genesis {
		meta, err := s.GetMetadata(g.Hash)
		if err != nil {
			return err
		}
		if err := fn(g, meta); err != nil {
			return err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	iter := s.db.NewIterator(util.BytesPrefix([]byte("v/")), nil)
	defer iter.Release()

	for iter.Next() {
		v, err := codec.Decode(iter.Value())
		if err != nil {
			return errors.Wrap(err, "storage: decoding vertex during scan")
		}
		mBytes, err := s.db.Get(metadataKey(v.Hash), nil)
		if err != nil {
			return errors.Wrap(err, "storage: reading metadata during scan")
		}
		meta, err := decodeMetadata(mBytes)
		if err != nil {
			return err
		}
		if err := fn(v, meta); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close releases the underlying leveldb handle.
func (s *LevelDB) Close() error {
	return s.db.Close()
}
