package store

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Config holds the configuration for the BadgerDB backing a fact store.
type Config struct {
	// DataDir is the directory where BadgerDB stores its data when
	// InMemory is false.
	DataDir string

	// InMemory keeps everything in RAM. This is the default: an ontology is
	// rebuilt from its N-Triples file on every start.
	InMemory bool

	// BlockCacheSize is the size of the block cache in bytes.
	BlockCacheSize int64

	// IndexCacheSize is the size of the index cache in bytes.
	IndexCacheSize int64

	// LRUCacheSize is the size of the dictionary LRU cache.
	LRUCacheSize int

	// Compression enables ZSTD compression for on-disk tables.
	Compression bool

	// SyncWrites enables synchronous writes.
	SyncWrites bool
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("DataDir must be specified when InMemory is false")
	}
	if c.BlockCacheSize <= 0 {
		return fmt.Errorf("BlockCacheSize must be positive, got %d", c.BlockCacheSize)
	}
	if c.IndexCacheSize <= 0 {
		return fmt.Errorf("IndexCacheSize must be positive, got %d", c.IndexCacheSize)
	}
	if c.LRUCacheSize < 0 {
		return fmt.Errorf("LRUCacheSize must be non-negative, got %d", c.LRUCacheSize)
	}
	return nil
}

// DefaultConfig returns an in-memory configuration sized for a few hundred
// thousand facts.
func DefaultConfig() *Config {
	return &Config{
		InMemory:       true,
		BlockCacheSize: 64 << 20,
		IndexCacheSize: 16 << 20,
		LRUCacheSize:   50000,
	}
}

// DiskConfig returns a configuration that spills to dataDir.
func DiskConfig(dataDir string) *Config {
	cfg := DefaultConfig()
	cfg.InMemory = false
	cfg.DataDir = dataDir
	cfg.Compression = true
	return cfg
}

func buildBadgerOptions(cfg *Config) badger.Options {
	if cfg.InMemory {
		return badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(nil)
	}

	opts := badger.DefaultOptions(filepath.Join(cfg.DataDir, "badger")).
		WithLogger(nil)

	// 1% false positive rate balances memory vs performance
	opts.BloomFalsePositive = 0.01

	if cfg.Compression {
		opts.Compression = options.ZSTD
	} else {
		opts.Compression = options.None
	}

	opts.ValueLogFileSize = 64 << 20
	opts.NumCompactors = 2
	opts.BlockCacheSize = cfg.BlockCacheSize
	opts.IndexCacheSize = cfg.IndexCacheSize
	opts.SyncWrites = cfg.SyncWrites

	return opts
}

// OpenBadgerDB opens a BadgerDB instance with the given configuration.
func OpenBadgerDB(cfg *Config) (*badger.DB, error) {
	return badger.Open(buildBadgerOptions(cfg))
}
