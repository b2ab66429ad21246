// Package service answers natural-language country questions against the
// loaded ontology.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/duynguyendang/geoqa/pkg/answer"
	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/metrics"
	"github.com/duynguyendang/geoqa/pkg/normalize"
	"github.com/duynguyendang/geoqa/pkg/query"
	"github.com/duynguyendang/geoqa/pkg/stats"
)

// ErrNoResults is returned when a recognized question has no answer in the
// ontology.
var ErrNoResults = errors.New("no results found")

// Status is the outcome of a question.
type Status string

const (
	StatusAnswered     Status = "answered"
	StatusNoResults    Status = "no_results"
	StatusUnrecognized Status = "unrecognized"
)

// Answer is the result of asking one question.
type Answer struct {
	Question string `json:"question"`
	Intent   string `json:"intent"`
	Argument string `json:"argument,omitempty"`
	Key      string `json:"key,omitempty"`
	Text     string `json:"answer"`
	Status   Status `json:"status"`
	Cached   bool   `json:"cached,omitempty"`
}

// StoreProvider gives access to the current fact store.
type StoreProvider interface {
	View(fn func(s *kb.Store, generation uint64) error) error
}

// DefaultCacheSize is the number of answers kept when no size is set.
const DefaultCacheSize = 1024

type cacheKey struct {
	generation uint64
	question   string
}

type cacheEntry struct {
	answer Answer
	err    error
}

// QAService runs the classify, normalize, query, format pipeline.
type QAService struct {
	provider   StoreProvider
	classifier *intent.Classifier
	mode       query.MatchMode
	cache      *lru.Cache[cacheKey, cacheEntry]
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a QAService.
type Option func(*QAService)

// WithMatchMode sets how entity keys select identifiers.
func WithMatchMode(mode query.MatchMode) Option {
	return func(s *QAService) { s.mode = mode }
}

// WithCacheSize sets the answer cache size. Zero or less disables caching.
func WithCacheSize(size int) Option {
	return func(s *QAService) {
		s.cache = nil
		if size > 0 {
			s.cache, _ = lru.New[cacheKey, cacheEntry](size)
		}
	}
}

// WithMetrics records question outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QAService) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *QAService) { s.logger = l }
}

// NewQAService creates a service reading from provider.
func NewQAService(provider StoreProvider, opts ...Option) *QAService {
	s := &QAService{
		provider:   provider,
		classifier: intent.NewClassifier(),
		mode:       query.DefaultMatchMode,
		logger:     slog.Default(),
	}
	s.cache, _ = lru.New[cacheKey, cacheEntry](DefaultCacheSize)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the configured match mode.
func (s *QAService) Mode() query.MatchMode { return s.mode }

// Ask answers question. The returned Answer always carries the text to show
// for the outcome. The error is nil when answered, wraps
// intent.ErrUnrecognized or ErrNoResults for the two sentinel outcomes, and
// is anything else on failure, in which case the Answer has no text.
func (s *QAService) Ask(ctx context.Context, question string) (Answer, error) {
	start := time.Now()
	var a Answer
	err := s.provider.View(func(store *kb.Store, generation uint64) error {
		key := cacheKey{generation: generation, question: question}
		if s.cache != nil {
			if e, ok := s.cache.Get(key); ok {
				s.metrics.RecordCache(true)
				a = e.answer
				a.Cached = true
				return e.err
			}
			s.metrics.RecordCache(false)
		}

		var err error
		a, err = s.answer(ctx, store, question)
		if s.cache != nil && !IsFailure(err) {
			s.cache.Add(key, cacheEntry{answer: a, err: err})
		}
		return err
	})

	if IsFailure(err) {
		s.logger.Error("question failed", "question", question, "error", err)
		return Answer{Question: question}, err
	}
	s.metrics.RecordQuestion(a.Intent, string(a.Status), time.Since(start))
	s.logger.Debug("question answered",
		"question", question,
		"intent", a.Intent,
		"status", a.Status,
		"cached", a.Cached,
		"duration", time.Since(start),
	)
	return a, err
}

func (s *QAService) answer(ctx context.Context, store *kb.Store, question string) (Answer, error) {
	a := Answer{Question: question, Intent: intent.Unknown.String()}

	c, err := s.classifier.Classify(question)
	if err != nil {
		a.Text, a.Status = answer.Unrecognized, StatusUnrecognized
		return a, err
	}
	a.Intent, a.Argument = c.Intent.String(), c.Argument
	a.Key = normalize.Key(c.Argument)

	noResults := func() (Answer, error) {
		a.Text, a.Status = answer.NoResults, StatusNoResults
		return a, fmt.Errorf("%w: %s %q", ErrNoResults, c.Intent, c.Argument)
	}
	// An argument with nothing left after normalization cannot name an
	// entity.
	if a.Key == "" {
		return noResults()
	}

	rows, err := query.NewEngine(store, s.mode).Execute(ctx, c.Intent, a.Key)
	if err != nil {
		return a, err
	}
	if len(rows) == 0 {
		return noResults()
	}

	text, err := answer.Format(c.Intent, rows)
	if err != nil {
		return a, fmt.Errorf("failed to format %s answer: %w", c.Intent, err)
	}
	a.Text, a.Status = text, StatusAnswered
	return a, nil
}

// IsFailure reports whether err is a real failure rather than one of the
// unrecognized or no-results outcomes.
func IsFailure(err error) bool {
	return err != nil && !errors.Is(err, intent.ErrUnrecognized) && !errors.Is(err, ErrNoResults)
}

// Stats computes aggregate counts over the current ontology.
func (s *QAService) Stats(ctx context.Context) (stats.Summary, error) {
	var sum stats.Summary
	err := s.provider.View(func(store *kb.Store, _ uint64) error {
		var err error
		sum, err = stats.Compute(ctx, store)
		return err
	})
	return sum, err
}

// CountryNames lists the countries of the current ontology.
func (s *QAService) CountryNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.provider.View(func(store *kb.Store, _ uint64) error {
		var err error
		names, err = stats.CountryNames(ctx, store)
		return err
	})
	return names, err
}

// Purge empties the answer cache.
func (s *QAService) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
