// Package nodestore provides content-addressed persistent storage for
// ledger blobs: values keyed by 32-byte hashes, with an LRU read cache
// and transparent compression in front of a keyValueDb backend.
package nodestore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solcards/gocardsd/internal/storage/keyValueDb"
	"github.com/solcards/gocardsd/internal/storage/nodestore/compression"
)

var (
	// ErrNotFound indicates that a requested value was not found
	ErrNotFound = errors.New("nodestore: value not found")

	// ErrDataCorrupt indicates that stored data is corrupted
	ErrDataCorrupt = errors.New("nodestore: data corruption detected")

	// ErrClosed indicates that the store is closed
	ErrClosed = errors.New("nodestore: store is closed")
)

// Value encoding schemes
const (
	schemeRaw byte = 0
	schemeLZ4 byte = 1
)

// valueHeaderSize is the scheme byte plus the big-endian original size.
const valueHeaderSize = 1 + 4

// Config holds nodestore tuning parameters.
type Config struct {
	// CacheSize is the number of values kept in the LRU read cache
	CacheSize int

	// Compressor names the compression algorithm ("lz4" or "none")
	Compressor string

	// CompressionThreshold is the minimum value size worth compressing
	CompressionThreshold int
}

// DefaultConfig returns the standard nodestore configuration.
func DefaultConfig() Config {
	return Config{
		CacheSize:            16384,
		Compressor:           "lz4",
		CompressionThreshold: 128,
	}
}

// Item is one key/value pair for batch stores.
type Item struct {
	Key  [32]byte
	Data []byte
}

// Statistics holds nodestore performance counters.
type Statistics struct {
	Reads       uint64
	CacheHits   uint64
	CacheMisses uint64
	Writes      uint64
	ReadBytes   uint64
	WriteBytes  uint64
}

// Store is a content-addressed value store.
type Store struct {
	backend    keyValueDb.DB
	cache      *lru.Cache[[32]byte, []byte]
	compressor compression.Compressor
	threshold  int
	closed     atomic.Bool

	reads       atomic.Uint64
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	writes      atomic.Uint64
	readBytes   atomic.Uint64
	writeBytes  atomic.Uint64
}

// New creates a Store on top of the given backend.
func New(backend keyValueDb.DB, cfg Config) (*Store, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = DefaultConfig().CompressionThreshold
	}
	if cfg.Compressor == "" {
		cfg.Compressor = "lz4"
	}

	compressor, err := compression.Get(cfg.Compressor)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[[32]byte, []byte](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{
		backend:    backend,
		cache:      cache,
		compressor: compressor,
		threshold:  cfg.CompressionThreshold,
	}, nil
}

// Store persists a value under its key.
func (s *Store) Store(ctx context.Context, key [32]byte, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	encoded, err := s.encode(data)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, key[:], encoded); err != nil {
		return err
	}

	s.writes.Add(1)
	s.writeBytes.Add(uint64(len(data)))
	s.cache.Add(key, append([]byte(nil), data...))
	return nil
}

// StoreBatch persists multiple values in a single backend batch.
func (s *Store) StoreBatch(ctx context.Context, items []Item) error {
	if s.closed.Load() {
		return ErrClosed
	}

	ops := make([]keyValueDb.BatchOperation, 0, len(items))
	for _, item := range items {
		encoded, err := s.encode(item.Data)
		if err != nil {
			return err
		}
		ops = append(ops, keyValueDb.BatchOperation{
			Type:  keyValueDb.BatchPut,
			Key:   append([]byte(nil), item.Key[:]...),
			Value: encoded,
		})
	}
	if err := s.backend.Batch(ctx, ops); err != nil {
		return err
	}

	for _, item := range items {
		s.writes.Add(1)
		s.writeBytes.Add(uint64(len(item.Data)))
		s.cache.Add(item.Key, append([]byte(nil), item.Data...))
	}
	return nil
}

// Fetch retrieves a value by key. Returns ErrNotFound when absent.
func (s *Store) Fetch(ctx context.Context, key [32]byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.reads.Add(1)
	if data, ok := s.cache.Get(key); ok {
		s.cacheHits.Add(1)
		return append([]byte(nil), data...), nil
	}
	s.cacheMisses.Add(1)

	encoded, err := s.backend.Read(ctx, key[:])
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data, err := s.decode(encoded)
	if err != nil {
		return nil, err
	}

	s.readBytes.Add(uint64(len(data)))
	s.cache.Add(key, append([]byte(nil), data...))
	return data, nil
}

// Sweep drops all cached values.
func (s *Store) Sweep() {
	s.cache.Purge()
}

// Stats returns a snapshot of the performance counters.
func (s *Store) Stats() Statistics {
	return Statistics{
		Reads:       s.reads.Load(),
		CacheHits:   s.cacheHits.Load(),
		CacheMisses: s.cacheMisses.Load(),
		Writes:      s.writes.Load(),
		ReadBytes:   s.readBytes.Load(),
		WriteBytes:  s.writeBytes.Load(),
	}
}

// Close closes the store and its backend.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cache.Purge()
	return s.backend.Close()
}

// encode prefixes the value with its scheme and original size,
// compressing when it pays off.
func (s *Store) encode(data []byte) ([]byte, error) {
	scheme := schemeRaw
	payload := data

	if len(data) >= s.threshold && s.compressor.Name() == "lz4" {
		compressed, err := s.compressor.Compress(data)
		if err != nil {
			return nil, err
		}
		// An empty or larger result means the data was incompressible
		if len(compressed) > 0 && len(compressed) < len(data) {
			scheme = schemeLZ4
			payload = compressed
		}
	}

	out := make([]byte, 0, valueHeaderSize+len(payload))
	out = append(out, scheme)
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, payload...)
	return out, nil
}

func (s *Store) decode(encoded []byte) ([]byte, error) {
	if len(encoded) < valueHeaderSize {
		return nil, ErrDataCorrupt
	}
	scheme := encoded[0]
	originalSize := binary.BigEndian.Uint32(encoded[1:5])
	payload := encoded[valueHeaderSize:]

	switch scheme {
	case schemeRaw:
		if uint32(len(payload)) != originalSize {
			return nil, ErrDataCorrupt
		}
		return append([]byte(nil), payload...), nil

	case schemeLZ4:
		lz4, err := compression.Get("lz4")
		if err != nil {
			return nil, err
		}
		data, err := lz4.Decompress(payload, int(originalSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataCorrupt, err)
		}
		if uint32(len(data)) != originalSize {
			return nil, ErrDataCorrupt
		}
		return data, nil

	default:
		return nil, ErrDataCorrupt
	}
}
