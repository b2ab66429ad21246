package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/normalize"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

var (
	ErrInvalidArgument = errors.New("invalid query argument")
	ErrNoTemplate      = errors.New("no query template for intent")
)

// MatchMode decides how an entity key selects identifiers.
type MatchMode string

const (
	// MatchSubstring keeps identifiers whose text contains the key, ignoring
	// case. "guinea" selects Guinea, Equatorial Guinea and Guinea-Bissau.
	MatchSubstring MatchMode = "substring"
	// MatchExact keeps identifiers whose normalized local name equals the key.
	MatchExact MatchMode = "exact"
	// MatchExactFirst uses exact matching and falls back to containment in
	// the normalized local name when that finds nothing. Unlike
	// MatchSubstring, the fallback never matches on the IRI's host or path.
	MatchExactFirst MatchMode = "exact-first"
)

// DefaultMatchMode is used when no mode is configured.
const DefaultMatchMode = MatchExactFirst

// ParseMatchMode validates a configured mode name. Empty means the default.
func ParseMatchMode(s string) (MatchMode, error) {
	switch m := MatchMode(s); m {
	case "":
		return DefaultMatchMode, nil
	case MatchSubstring, MatchExact, MatchExactFirst:
		return m, nil
	}
	return "", fmt.Errorf("unknown match mode %q (want substring, exact or exact-first)", s)
}

// Row is one projected result row.
type Row []kb.Term

// Querier runs Datalog over a fact store.
type Querier interface {
	Query(ctx context.Context, query string, opts ...kb.QueryOption) ([]kb.Binding, error)
}

// Engine executes intent templates.
type Engine struct {
	store     Querier
	mode      MatchMode
	templates map[intent.Intent]Template
	logger    *slog.Logger
}

// NewEngine creates an engine over store.
func NewEngine(store Querier, mode MatchMode) *Engine {
	if mode == "" {
		mode = DefaultMatchMode
	}
	return &Engine{
		store:     store,
		mode:      mode,
		templates: Templates,
		logger:    slog.Default(),
	}
}

// Mode returns the engine's match mode.
func (e *Engine) Mode() MatchMode { return e.mode }

// namedFilter compares the normalized local name of a term with the key.
func namedFilter(v kb.Term, key string) (bool, error) {
	return normalize.Key(vocab.LocalName(v.Text())) == key, nil
}

// withinFilter keeps terms whose normalized local name contains the key.
func withinFilter(v kb.Term, key string) (bool, error) {
	return strings.Contains(normalize.Key(vocab.LocalName(v.Text())), key), nil
}

// Execute runs the template for in with the normalized key. An empty
// result is not an error.
func (e *Engine) Execute(ctx context.Context, in intent.Intent, key string) ([]Row, error) {
	t, ok := e.templates[in]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, in)
	}
	// The key is spliced into the query text.
	if !normalize.IsKey(key) {
		return nil, fmt.Errorf("%w: %q is not a normalized key", ErrInvalidArgument, key)
	}

	switch e.mode {
	case MatchSubstring:
		return e.run(ctx, t, "contains", key)
	case MatchExact:
		return e.run(ctx, t, "named", key)
	}

	rows, err := e.run(ctx, t, "named", key)
	if err != nil || len(rows) > 0 {
		return rows, err
	}
	return e.run(ctx, t, "within", key)
}

func (e *Engine) run(ctx context.Context, t Template, filter, key string) ([]Row, error) {
	q := t.Instantiate(filter, key)
	bindings, err := e.store.Query(ctx, q, kb.WithFilter("named", namedFilter), kb.WithFilter("within", withinFilter))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	projected, err := kb.Project(bindings, t.Select...)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(projected))
	for i, r := range projected {
		rows[i] = Row(r)
	}
	e.logger.Debug("template executed", "filter", filter, "key", key, "rows", len(rows))
	return rows, nil
}
