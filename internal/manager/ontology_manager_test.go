package manager

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/ntriples"
)

const wiki = "https://en.wikipedia.org/wiki/"

func writeOntology(t *testing.T, path string, countries ...string) {
	t.Helper()
	s, err := kb.Open(nil)
	require.NoError(t, err)
	defer s.Close()
	for _, c := range countries {
		_, err := s.Insert(kb.NewFact(kb.IRI(wiki+c), kb.IRI(wiki+"Is-a"), kb.IRI(wiki+"Country")))
		require.NoError(t, err)
	}
	_, err = ntriples.WriteFile(context.Background(), path, s)
	require.NoError(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	m := NewOntologyManager(filepath.Join(t.TempDir(), "ontology.nt"), nil)
	defer m.Close()

	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = m.View(func(*kb.Store, uint64) error { return nil })
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, m.Info().Loaded)
}

func TestLoadAndReloadSwapsStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontology.nt")
	writeOntology(t, path, "France")

	m := NewOntologyManager(path, nil)
	defer m.Close()

	n, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var first *kb.Store
	require.NoError(t, m.View(func(s *kb.Store, gen uint64) error {
		first = s
		assert.Equal(t, uint64(1), gen)
		return nil
	}))

	writeOntology(t, path, "France", "Peru")
	_, err = m.Load(context.Background())
	require.NoError(t, err)

	info := m.Info()
	assert.True(t, info.Loaded)
	assert.Equal(t, uint64(2), info.Generation)
	assert.Equal(t, uint64(2), info.Facts)

	// The replaced store was closed.
	_, err = first.Match(kb.Pattern{})
	assert.ErrorIs(t, err, kb.ErrClosed)
}

func TestFailedReloadKeepsCurrentStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ontology.nt")
	writeOntology(t, path, "France")

	m := NewOntologyManager(path, nil)
	defer m.Close()
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	var hooked []error
	m.OnLoad(func(info Info, err error) {
		assert.True(t, info.Loaded)
		hooked = append(hooked, err)
	})

	m.path = filepath.Join(dir, "gone.nt")
	_, err = m.Load(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, uint64(1), m.Info().Facts)
	require.Len(t, hooked, 1)
	assert.ErrorIs(t, hooked[0], ErrStoreUnavailable)
}

func TestWatchReloadsOnReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontology.nt")
	writeOntology(t, path, "France")

	m := NewOntologyManager(path, nil)
	defer m.Close()
	_, err := m.Load(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx, 20*time.Millisecond) }()

	// Give the watcher time to register before replacing the file.
	time.Sleep(100 * time.Millisecond)
	writeOntology(t, path, "France", "Peru", "Chile")

	assert.Eventually(t, func() bool {
		return m.Info().Facts == 3
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
