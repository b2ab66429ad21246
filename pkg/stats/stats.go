// Package stats computes aggregate counts over a country ontology.
package stats

import (
	"context"

	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

// Source is the read side of a fact store.
type Source interface {
	MatchContext(ctx context.Context, p kb.Pattern) ([]kb.Fact, error)
	MatchFiltered(p kb.Pattern, keep func(kb.Term) bool) ([]kb.Fact, error)
}

// Summary holds the aggregate counts.
type Summary struct {
	Countries      int `json:"countries" yaml:"countries"`
	PrimeMinisters int `json:"prime_ministers" yaml:"prime_ministers"`
	Presidents     int `json:"presidents" yaml:"presidents"`
	Republics      int `json:"republics" yaml:"republics"`
	Monarchies     int `json:"monarchies" yaml:"monarchies"`
}

// Compute counts countries, office holders and government families.
func Compute(ctx context.Context, src Source) (Summary, error) {
	var sum Summary
	var err error

	countries, err := subjects(ctx, src, kb.Pattern{Predicate: vocab.IsA.Term(), Object: vocab.Country.Term()})
	if err != nil {
		return sum, err
	}
	sum.Countries = len(countries)

	if sum.PrimeMinisters, err = holders(ctx, src, vocab.RolePrimeMinister); err != nil {
		return sum, err
	}
	if sum.Presidents, err = holders(ctx, src, vocab.RolePresident); err != nil {
		return sum, err
	}
	if sum.Republics, err = governedBy(src, "republic"); err != nil {
		return sum, err
	}
	if sum.Monarchies, err = governedBy(src, "monarchy"); err != nil {
		return sum, err
	}
	return sum, nil
}

// CountryNames returns the local names of every country, in insertion order.
func CountryNames(ctx context.Context, src Source) ([]string, error) {
	facts, err := src.MatchContext(ctx, kb.Pattern{Predicate: vocab.IsA.Term(), Object: vocab.Country.Term()})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(facts))
	for _, f := range facts {
		names = append(names, vocab.LocalName(f.Subject.Text()))
	}
	return names, nil
}

// holders counts the distinct persons with the given job.
func holders(ctx context.Context, src Source, role vocab.Role) (int, error) {
	people, err := subjects(ctx, src, kb.Pattern{Predicate: vocab.IsA.Term(), Object: vocab.Person.Term()})
	if err != nil {
		return 0, err
	}
	withJob, err := subjects(ctx, src, kb.Pattern{Predicate: vocab.Job.Term(), Object: role.Term()})
	if err != nil {
		return 0, err
	}
	n := 0
	for p := range withJob {
		if _, ok := people[p]; ok {
			n++
		}
	}
	return n, nil
}

// governedBy counts the distinct countries with a government type whose
// text contains family, ignoring case.
func governedBy(src Source, family string) (int, error) {
	facts, err := src.MatchFiltered(kb.Pattern{Predicate: vocab.GovernmentType.Term()}, kb.ContainsFold(family))
	if err != nil {
		return 0, err
	}
	seen := make(map[kb.Term]struct{}, len(facts))
	for _, f := range facts {
		seen[f.Subject] = struct{}{}
	}
	return len(seen), nil
}

func subjects(ctx context.Context, src Source, p kb.Pattern) (map[kb.Term]struct{}, error) {
	facts, err := src.MatchContext(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make(map[kb.Term]struct{}, len(facts))
	for _, f := range facts {
		out[f.Subject] = struct{}{}
	}
	return out, nil
}
