package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/ontology/ontologytest"
	"github.com/duynguyendang/geoqa/pkg/query"
)

type staticProvider struct {
	store      *kb.Store
	generation uint64
	err        error
}

func (p *staticProvider) View(fn func(*kb.Store, uint64) error) error {
	if p.err != nil {
		return p.err
	}
	return fn(p.store, p.generation)
}

func newService(t *testing.T, opts ...Option) (*QAService, *staticProvider) {
	t.Helper()
	p := &staticProvider{store: ontologytest.Open(t), generation: 1}
	return NewQAService(p, opts...), p
}

func TestAsk(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		question string
		want     string
		status   Status
		intent   string
	}{
		{"Who is the president of France?", "Emmanuel Macron", StatusAnswered, "president"},
		{"Who is the prime minister of United Kingdom?", "Keir Starmer", StatusAnswered, "prime-minister"},
		{"What is the population of France?", "67,000,000", StatusAnswered, "population"},
		{"What is the area of France?", "643,801 km2", StatusAnswered, "area"},
		{"What is the government of France?", "Unitary State, Semi-presidential System, Republic", StatusAnswered, "government"},
		{"What is the capital of New Zealand?", "Wellington", StatusAnswered, "capital"},
		{"When was the president of France born?", "1977-12-21", StatusAnswered, "president-birthday"},
		{"When was the prime minister of New Zealand born?", "1970-07-19", StatusAnswered, "prime-minister-birthday"},
		{"Who is Emmanuel Macron?", "President of France", StatusAnswered, "who-is"},
		{"Who is Keir Starmer?", "Prime minister of United Kingdom", StatusAnswered, "who-is"},
		{"  What is the capital of   new   zealand ?  ", "Wellington", StatusAnswered, "capital"},
		{"What is the capital of Nauru?", "no results found.", StatusNoResults, "capital"},
		{"What is the area of Guinea?", "no results found.", StatusNoResults, "area"},
		{"Who is the president of Atlantis?", "no results found.", StatusNoResults, "president"},
		{"Who is 1984?", "no results found.", StatusNoResults, "who-is"},
		{"Who is the president of ϒ?", "no results found.", StatusNoResults, "president"},
		{"What is the population of Wiki?", "no results found.", StatusNoResults, "population"},
		{"What is the capital of org?", "no results found.", StatusNoResults, "capital"},
		{"Tell me about France", "unrecognized query.", StatusUnrecognized, "unknown"},
		{"", "unrecognized query.", StatusUnrecognized, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			a, err := svc.Ask(context.Background(), tt.question)
			assert.False(t, IsFailure(err), "unexpected failure: %v", err)
			assert.Equal(t, tt.want, a.Text)
			assert.Equal(t, tt.status, a.Status)
			assert.Equal(t, tt.intent, a.Intent)

			switch tt.status {
			case StatusAnswered:
				assert.NoError(t, err)
			case StatusNoResults:
				assert.ErrorIs(t, err, ErrNoResults)
			case StatusUnrecognized:
				assert.ErrorIs(t, err, intent.ErrUnrecognized)
			}
		})
	}
}

func TestAskPrecedence(t *testing.T) {
	svc, _ := newService(t)
	a, err := svc.Ask(context.Background(), "Who is the president of France?")
	require.NoError(t, err)
	assert.Equal(t, "president", a.Intent)
	assert.Equal(t, "France", a.Argument)
	assert.Equal(t, "france", a.Key)
}

func TestAskGuineaByMatchMode(t *testing.T) {
	tests := []struct {
		mode     query.MatchMode
		question string
		want     string
	}{
		{query.MatchSubstring, "What is the government of Guinea?", "Unitary State, Provisional Government, Unitary State, Presidential Republic"},
		{query.MatchExact, "What is the government of Guinea?", "Unitary State, Provisional Government"},
		{query.MatchExactFirst, "What is the government of Guinea?", "Unitary State, Provisional Government"},
		{query.MatchSubstring, "What is the capital of Equatorial Guinea?", "Malabo"},
		{query.MatchExact, "What is the capital of Equatorial Guinea?", "Malabo"},
		{query.MatchExactFirst, "What is the capital of Equatorial Guinea?", "Malabo"},
		{query.MatchSubstring, "What is the capital of Zealand?", "Wellington"},
		{query.MatchExact, "What is the capital of Zealand?", "no results found."},
		{query.MatchExactFirst, "What is the capital of Zealand?", "Wellington"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.question, func(t *testing.T) {
			svc, _ := newService(t, WithMatchMode(tt.mode))
			a, err := svc.Ask(context.Background(), tt.question)
			assert.False(t, IsFailure(err))
			assert.Equal(t, tt.want, a.Text)
		})
	}
}

func TestAskCachesPerGeneration(t *testing.T) {
	svc, p := newService(t, WithCacheSize(8))
	ctx := context.Background()

	first, err := svc.Ask(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Ask(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "Paris", second.Text)

	// Sentinel outcomes are cached with their error.
	_, err = svc.Ask(ctx, "What is the capital of Nauru?")
	require.ErrorIs(t, err, ErrNoResults)
	cached, err := svc.Ask(ctx, "What is the capital of Nauru?")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.True(t, cached.Cached)

	p.generation++
	third, err := svc.Ask(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.False(t, third.Cached)

	svc.Purge()
	fourth, err := svc.Ask(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.False(t, fourth.Cached)
}

func TestAskWithoutCache(t *testing.T) {
	svc, _ := newService(t, WithCacheSize(0))
	for range 2 {
		a, err := svc.Ask(context.Background(), "What is the capital of France?")
		require.NoError(t, err)
		assert.False(t, a.Cached)
	}
}

func TestAskStoreFailure(t *testing.T) {
	unavailable := errors.New("store unavailable")
	svc := NewQAService(&staticProvider{err: unavailable})

	a, err := svc.Ask(context.Background(), "What is the capital of France?")
	assert.ErrorIs(t, err, unavailable)
	assert.True(t, IsFailure(err))
	assert.Empty(t, a.Text)
}

func TestIsFailure(t *testing.T) {
	assert.False(t, IsFailure(nil))
	assert.False(t, IsFailure(intent.ErrUnrecognized))
	assert.False(t, IsFailure(ErrNoResults))
	assert.True(t, IsFailure(kb.ErrClosed))
}

func TestStatsAndCountryNames(t *testing.T) {
	svc, _ := newService(t)

	sum, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Countries)
	assert.Equal(t, 2, sum.Monarchies)

	names, err := svc.CountryNames(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "Equatorial_Guinea")
}
