package kb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/duynguyendang/geoqa/pkg/kb/dict"
	"github.com/duynguyendang/geoqa/pkg/kb/keys"
)

// scanStrategy is the index and key prefix chosen for a pattern.
type scanStrategy struct {
	prefix []byte
	index  byte
}

// boundIDs holds the dictionary IDs of a pattern. Zero means unbound.
type boundIDs struct {
	s, p, o uint64
}

func selectScanStrategy(ids boundIDs) scanStrategy {
	switch {
	case ids.s != 0:
		return scanStrategy{prefix: keys.EncodeSPOPrefix(ids.s, ids.p), index: keys.SPOPrefix}
	case ids.o != 0:
		return scanStrategy{prefix: keys.EncodeOPSPrefix(ids.o, ids.p), index: keys.OPSPrefix}
	case ids.p != 0:
		return scanStrategy{prefix: keys.EncodePSOPrefix(ids.p, 0), index: keys.PSOPrefix}
	}
	return scanStrategy{prefix: []byte{keys.SPOPrefix}, index: keys.SPOPrefix}
}

// resolvePattern maps bound pattern terms to IDs. found is false when a
// bound term has never been stored, in which case nothing can match.
func (s *Store) resolvePattern(p Pattern) (ids boundIDs, found bool, err error) {
	resolve := func(t Term) (uint64, bool, error) {
		if t.IsAny() {
			return 0, true, nil
		}
		id, err := s.dict.GetID(t.dictKey())
		if errors.Is(err, dict.ErrNotFound) {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		return id, true, nil
	}

	var ok bool
	if ids.s, ok, err = resolve(p.Subject); err != nil || !ok {
		return ids, false, err
	}
	if ids.p, ok, err = resolve(p.Predicate); err != nil || !ok {
		return ids, false, err
	}
	if ids.o, ok, err = resolve(p.Object); err != nil || !ok {
		return ids, false, err
	}
	return ids, true, nil
}

// encodedFact is a matched index entry before term resolution.
type encodedFact struct {
	s, p, o uint64
	seq     uint64
}

// scanIDs streams the encoded facts matching p in index order.
func (s *Store) scanIDs(ctx context.Context, p Pattern) iter.Seq2[encodedFact, error] {
	return func(yield func(encodedFact, error) bool) {
		if s.closed.Load() {
			yield(encodedFact{}, ErrClosed)
			return
		}
		ids, found, err := s.resolvePattern(p)
		if err != nil {
			yield(encodedFact{}, fmt.Errorf("failed to resolve pattern: %w", err))
			return
		}
		if !found {
			return
		}
		strategy := selectScanStrategy(ids)

		txn := s.db.NewTransaction(false)
		defer txn.Discard()

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(strategy.prefix); it.ValidForPrefix(strategy.prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				yield(encodedFact{}, err)
				return
			}

			item := it.Item()
			sID, pID, oID, ok := keys.DecodeKey(item.Key())
			if !ok {
				continue
			}
			// The prefix covers the leading bound components only.
			if (ids.s != 0 && sID != ids.s) || (ids.p != 0 && pID != ids.p) || (ids.o != 0 && oID != ids.o) {
				continue
			}

			var seq uint64
			if err := item.Value(func(val []byte) error {
				seq = keys.DecodeSeq(val)
				return nil
			}); err != nil {
				yield(encodedFact{}, err)
				return
			}

			if !yield(encodedFact{s: sID, p: pID, o: oID, seq: seq}, nil) {
				return
			}
		}
	}
}

// termResolver decodes IDs back to terms, memoizing within one call.
type termResolver struct {
	dict  dict.Dictionary
	terms map[uint64]Term
}

func (s *Store) newResolver() *termResolver {
	return &termResolver{dict: s.dict, terms: make(map[uint64]Term)}
}

func (r *termResolver) term(id uint64) (Term, error) {
	if t, ok := r.terms[id]; ok {
		return t, nil
	}
	key, err := r.dict.GetString(id)
	if err != nil {
		return Term{}, fmt.Errorf("failed to resolve ID %d: %w", id, err)
	}
	t, err := termFromDictKey(key)
	if err != nil {
		return Term{}, err
	}
	r.terms[id] = t
	return t, nil
}

func (r *termResolver) fact(e encodedFact) (Fact, error) {
	var f Fact
	var err error
	if f.Subject, err = r.term(e.s); err != nil {
		return Fact{}, err
	}
	if f.Predicate, err = r.term(e.p); err != nil {
		return Fact{}, err
	}
	if f.Object, err = r.term(e.o); err != nil {
		return Fact{}, err
	}
	return f, nil
}

// Scan streams the facts matching p in index order.
func (s *Store) Scan(ctx context.Context, p Pattern) iter.Seq2[Fact, error] {
	return func(yield func(Fact, error) bool) {
		resolver := s.newResolver()
		for e, err := range s.scanIDs(ctx, p) {
			if err != nil {
				yield(Fact{}, err)
				return
			}
			f, err := resolver.fact(e)
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// Match returns the facts matching p in insertion order.
func (s *Store) Match(p Pattern) ([]Fact, error) {
	return s.MatchContext(context.Background(), p)
}

// MatchContext is Match with cancellation.
func (s *Store) MatchContext(ctx context.Context, p Pattern) ([]Fact, error) {
	var encoded []encodedFact
	for e, err := range s.scanIDs(ctx, p) {
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, e)
	}
	slices.SortFunc(encoded, func(a, b encodedFact) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	resolver := s.newResolver()
	facts := make([]Fact, 0, len(encoded))
	for _, e := range encoded {
		f, err := resolver.fact(e)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// MatchFiltered returns the facts matching p whose object satisfies keep,
// in insertion order.
func (s *Store) MatchFiltered(p Pattern, keep func(Term) bool) ([]Fact, error) {
	facts, err := s.Match(p)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(facts, func(f Fact) bool { return !keep(f.Object) }), nil
}

// Predicates returns the distinct predicates in use.
func (s *Store) Predicates() ([]Term, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var ids []uint64
	err := s.withReadTxn(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{keys.PSOPrefix}
		for it.Seek(prefix); it.ValidForPrefix(prefix); {
			_, pID, _, ok := keys.DecodePSOKey(it.Item().Key())
			if !ok {
				it.Next()
				continue
			}
			ids = append(ids, pID)
			// Skip the remaining keys of this predicate.
			it.Seek(keys.EncodePSOPrefix(pID+1, 0))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resolver := s.newResolver()
	preds := make([]Term, 0, len(ids))
	for _, id := range ids {
		t, err := resolver.term(id)
		if err != nil {
			return nil, err
		}
		preds = append(preds, t)
	}
	return preds, nil
}
