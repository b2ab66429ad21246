package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/kb/store"
	"github.com/duynguyendang/geoqa/pkg/ntriples"
)

// ErrStoreUnavailable means no ontology is loaded. It is fatal for the
// query path.
var ErrStoreUnavailable = errors.New("ontology store unavailable")

// Info describes the loaded ontology.
type Info struct {
	Path       string    `json:"path"`
	Loaded     bool      `json:"loaded"`
	Generation uint64    `json:"generation"`
	Facts      uint64    `json:"facts"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// OntologyManager owns the live fact store. Readers hold the read lock for
// the duration of a query; a reload builds the replacement off-lock and
// swaps it in under the write lock.
type OntologyManager struct {
	path   string
	config *store.Config
	logger *slog.Logger

	mu         sync.RWMutex
	current    *kb.Store
	generation uint64
	loadedAt   time.Time
	onLoad     func(Info, error)
}

// NewOntologyManager creates a manager for the N-Triples file at path.
func NewOntologyManager(path string, cfg *store.Config) *OntologyManager {
	if cfg == nil {
		cfg = store.DefaultConfig()
	}
	return &OntologyManager{
		path:   path,
		config: cfg,
		logger: slog.Default().With("component", "ontology"),
	}
}

// Path returns the ontology file path.
func (m *OntologyManager) Path() string { return m.path }

// OnLoad registers fn to run after every load attempt.
func (m *OntologyManager) OnLoad(fn func(Info, error)) {
	m.mu.Lock()
	m.onLoad = fn
	m.mu.Unlock()
}

// Load reads the ontology file into a fresh store and makes it current.
// A missing file yields ErrStoreUnavailable and keeps the previous store.
func (m *OntologyManager) Load(ctx context.Context) (int, error) {
	n, err := m.load(ctx)
	m.mu.RLock()
	fn := m.onLoad
	m.mu.RUnlock()
	if fn != nil {
		fn(m.Info(), err)
	}
	return n, err
}

func (m *OntologyManager) load(ctx context.Context) (int, error) {
	start := time.Now()
	s, err := kb.Open(m.config)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	n, err := ntriples.ReadFile(ctx, m.path, s)
	if err != nil {
		s.Close()
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s was not found, build it with the create command", ErrStoreUnavailable, m.path)
		}
		return n, fmt.Errorf("%w: failed to load %s: %v", ErrStoreUnavailable, m.path, err)
	}

	gen := m.Swap(s)
	m.logger.Info("ontology loaded",
		"path", m.path,
		"triples", n,
		"facts", s.Count(),
		"generation", gen,
		"duration", time.Since(start),
	)
	return n, nil
}

// Swap installs s as the current store, closes the previous one once no
// reader holds it, and returns the new generation.
func (m *OntologyManager) Swap(s *kb.Store) uint64 {
	m.mu.Lock()
	old := m.current
	m.current = s
	m.generation++
	m.loadedAt = time.Now()
	gen := m.generation
	m.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			m.logger.Warn("failed to close previous store", "error", err)
		}
	}
	return gen
}

// View runs fn against the current store while holding the read lock.
func (m *OntologyManager) View(fn func(s *kb.Store, generation uint64) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ErrStoreUnavailable
	}
	return fn(m.current, m.generation)
}

// Info reports on the current store.
func (m *OntologyManager) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info := Info{Path: m.path, Generation: m.generation, LoadedAt: m.loadedAt}
	if m.current != nil {
		info.Loaded = true
		info.Facts = m.current.Count()
	}
	return info
}

// Close releases the current store.
func (m *OntologyManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	err := m.current.Close()
	m.current = nil
	return err
}
