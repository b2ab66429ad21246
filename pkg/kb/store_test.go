package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/pkg/kb/store"
)

const wiki = "https://en.wikipedia.org/wiki/"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func w(local string) Term { return IRI(wiki + local) }

func TestInsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	f := NewFact(w("France"), w("Is-a"), w("Country"))

	added, err := s.Insert(f)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Insert(f)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, uint64(1), s.Count())

	n, err := s.InsertBatch([]Fact{f, f, NewFact(w("Peru"), w("Is-a"), w("Country"))})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(2), s.Count())
}

func TestInsertRejectsInvalidFacts(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		fact Fact
	}{
		{"literal subject", NewFact(StringLiteral("x"), w("Job"), w("President"))},
		{"wildcard object", NewFact(w("France"), w("Is-a"), Any)},
		{"bad date", NewFact(w("Someone"), w("Birthday"), DateLiteral("yesterday"))},
		{"zero population", NewFact(w("France"), w("Population"), IntegerLiteral(0))},
		{"empty identifier", NewFact(IRI(" "), w("Is-a"), w("Country"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Insert(tt.fact)
			assert.ErrorIs(t, err, ErrInvalidFact)
		})
	}
	assert.Zero(t, s.Count())
}

func TestMatchPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	gov := w("Government")
	types := []Term{w("Unitary_state"), w("Semi-presidential_system"), w("Republic")}

	// Mint dictionary IDs in reverse so that index order differs from
	// insertion order.
	for i := len(types) - 1; i >= 0; i-- {
		_, err := s.Insert(NewFact(w("Elsewhere"), gov, types[i]))
		require.NoError(t, err)
	}
	for _, ty := range types {
		_, err := s.Insert(NewFact(w("France"), gov, ty))
		require.NoError(t, err)
	}
	// Re-inserting does not move a fact.
	_, err := s.Insert(NewFact(w("France"), gov, types[0]))
	require.NoError(t, err)

	facts, err := s.Match(Pattern{Subject: w("France"), Predicate: gov})
	require.NoError(t, err)
	require.Len(t, facts, 3)
	for i, f := range facts {
		assert.Equal(t, types[i], f.Object)
	}
}

func TestMatchPatterns(t *testing.T) {
	s := newTestStore(t)
	facts := []Fact{
		NewFact(w("France"), w("Is-a"), w("Country")),
		NewFact(w("Paris"), w("Is-a"), w("City")),
		NewFact(w("Paris"), w("Capital_city"), w("France")),
		NewFact(w("France"), w("Population"), IntegerLiteral(67000000)),
		NewFact(w("Emmanuel_Macron"), w("Birthday"), DateLiteral("1977-12-21")),
	}
	_, err := s.InsertBatch(facts)
	require.NoError(t, err)

	tests := []struct {
		name    string
		pattern Pattern
		want    []Fact
	}{
		{"all", Pattern{}, facts},
		{"by subject", Pattern{Subject: w("Paris")}, facts[1:3]},
		{"by predicate", Pattern{Predicate: w("Is-a")}, facts[0:2]},
		{"by object", Pattern{Object: w("France")}, facts[2:3]},
		{"predicate and object", Pattern{Predicate: w("Is-a"), Object: w("City")}, facts[1:2]},
		{"subject and object", Pattern{Subject: w("Paris"), Object: w("France")}, facts[2:3]},
		{"typed literal", Pattern{Object: IntegerLiteral(67000000)}, facts[3:4]},
		{"unknown term", Pattern{Subject: w("Atlantis")}, nil},
		{"literal type matters", Pattern{Object: StringLiteral("67000000")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Match(tt.pattern)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchFiltered(t *testing.T) {
	s := newTestStore(t)
	gov := w("Government")
	_, err := s.InsertBatch([]Fact{
		NewFact(w("France"), gov, w("Republic")),
		NewFact(w("France"), gov, w("Unitary_state")),
		NewFact(w("Spain"), gov, w("Constitutional_monarchy")),
		NewFact(w("Germany"), gov, w("Federal_parliamentary_republic")),
	})
	require.NoError(t, err)

	facts, err := s.MatchFiltered(Pattern{Predicate: gov}, ContainsFold("REPUBLIC"))
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, w("France"), facts[0].Subject)
	assert.Equal(t, w("Germany"), facts[1].Subject)
}

func TestScanHonoursContext(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertBatch([]Fact{
		NewFact(w("France"), w("Is-a"), w("Country")),
		NewFact(w("Peru"), w("Is-a"), w("Country")),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var gotErr error
	for _, err := range s.Scan(ctx, Pattern{}) {
		gotErr = err
		break
	}
	assert.ErrorIs(t, gotErr, context.Canceled)

	count := 0
	for f, err := range s.Scan(context.Background(), Pattern{Predicate: w("Is-a")}) {
		require.NoError(t, err)
		assert.Equal(t, w("Country"), f.Object)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestPredicates(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertBatch([]Fact{
		NewFact(w("France"), w("Is-a"), w("Country")),
		NewFact(w("Peru"), w("Is-a"), w("Country")),
		NewFact(w("Lima"), w("Capital_city"), w("Peru")),
	})
	require.NoError(t, err)

	preds, err := s.Predicates()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Term{w("Is-a"), w("Capital_city")}, preds)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Insert(NewFact(w("France"), w("Is-a"), w("Country")))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Match(Pattern{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDiskStoreReopens(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(store.DiskConfig(dir))
	require.NoError(t, err)
	_, err = s.InsertBatch([]Fact{
		NewFact(w("France"), w("Is-a"), w("Country")),
		NewFact(w("Peru"), w("Is-a"), w("Country")),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(store.DiskConfig(dir))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint64(2), s.Count())

	_, err = s.Insert(NewFact(w("Chile"), w("Is-a"), w("Country")))
	require.NoError(t, err)
	facts, err := s.Match(Pattern{Predicate: w("Is-a")})
	require.NoError(t, err)
	require.Len(t, facts, 3)
	assert.Equal(t, w("Chile"), facts[2].Subject)
}

func TestTermInt(t *testing.T) {
	n, err := IntegerLiteral(643801).Int()
	require.NoError(t, err)
	assert.Equal(t, uint64(643801), n)

	_, err = StringLiteral("643801").Int()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = w("France").Int()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
