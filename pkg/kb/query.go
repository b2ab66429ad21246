package kb

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/duynguyendang/geoqa/pkg/datalog"
)

// Binding maps variable names to the terms they are bound to.
type Binding map[string]Term

// Filter is a constraint of the form name(Var, "arg").
type Filter func(value Term, arg string) (bool, error)

type queryOptions struct {
	filters map[string]Filter
}

// QueryOption configures a single Query call.
type QueryOption func(*queryOptions)

// WithFilter registers a named binary constraint for one query.
func WithFilter(name string, fn Filter) QueryOption {
	return func(o *queryOptions) {
		o.filters[name] = fn
	}
}

func builtinFilters() map[string]Filter {
	return map[string]Filter{
		"contains": func(v Term, arg string) (bool, error) {
			return ContainsFold(arg)(v), nil
		},
		"regex": func(v Term, arg string) (bool, error) {
			re, err := regexp.Compile(arg)
			if err != nil {
				return false, fmt.Errorf("%w: invalid regex pattern '%s': %v", ErrInvalidQuery, arg, err)
			}
			return re.MatchString(v.Text()), nil
		},
	}
}

// constraint is a non-data atom with the variables it needs.
type constraint struct {
	atom datalog.Atom
	vars []string
}

// Query evaluates a conjunctive Datalog query over the store.
//
// Data atoms have the form triples(S, P, O); constants in them denote
// identifiers. Constraint atoms are neq(A, B) (or A != B), contains(V, "x"),
// regex(V, "re") and any filter passed with WithFilter. Each constraint is
// applied as soon as its variables are bound. Bindings come out in the
// insertion order of the facts that produced them.
func (s *Store) Query(ctx context.Context, query string, opts ...QueryOption) ([]Binding, error) {
	o := queryOptions{filters: builtinFilters()}
	for _, opt := range opts {
		opt(&o)
	}

	atoms, err := datalog.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var dataAtoms []datalog.Atom
	var constraints []constraint
	for _, atom := range atoms {
		switch {
		case atom.Predicate == "triples":
			if len(atom.Args) != 3 {
				return nil, fmt.Errorf("%w: triples predicate requires 3 arguments, got %d", ErrInvalidQuery, len(atom.Args))
			}
			dataAtoms = append(dataAtoms, atom)
		case atom.Predicate == "neq":
			if len(atom.Args) != 2 {
				return nil, fmt.Errorf("%w: neq constraint requires 2 arguments", ErrInvalidQuery)
			}
			constraints = append(constraints, constraint{atom: atom, vars: atom.Variables()})
		default:
			if _, ok := o.filters[atom.Predicate]; !ok {
				return nil, fmt.Errorf("%w: unknown constraint predicate: %s", ErrInvalidQuery, atom.Predicate)
			}
			if len(atom.Args) != 2 || !atom.Args[0].IsVariable() || atom.Args[1].IsVariable() {
				return nil, fmt.Errorf("%w: %s expects (Variable, \"constant\")", ErrInvalidQuery, atom.Predicate)
			}
			constraints = append(constraints, constraint{atom: atom, vars: atom.Variables()})
		}
	}
	if len(dataAtoms) == 0 {
		return nil, fmt.Errorf("%w: query must contain at least one data atom (e.g. triples(...))", ErrInvalidQuery)
	}

	bindings := []Binding{{}}
	bound := make(map[string]bool)
	applied := make([]bool, len(constraints))

	for _, atom := range dataAtoms {
		var next []Binding
		for _, b := range bindings {
			expanded, err := s.expand(ctx, atom, b)
			if err != nil {
				return nil, err
			}
			next = append(next, expanded...)
		}
		for _, name := range atom.Variables() {
			bound[name] = true
		}

		bindings = next
		for i, c := range constraints {
			if applied[i] || !allBound(c.vars, bound) {
				continue
			}
			applied[i] = true
			if bindings, err = applyConstraint(c.atom, bindings, o.filters); err != nil {
				return nil, err
			}
		}
		if len(bindings) == 0 {
			return nil, nil
		}
	}

	for i, c := range constraints {
		if !applied[i] {
			return nil, fmt.Errorf("%w: constraint %s uses unbound variables", ErrInvalidQuery, c.atom)
		}
	}
	return bindings, nil
}

// expand joins one data atom against a partial binding.
func (s *Store) expand(ctx context.Context, atom datalog.Atom, b Binding) ([]Binding, error) {
	var pattern [3]Term
	for i, arg := range atom.Args {
		switch {
		case arg.IsAnonymous():
			pattern[i] = Any
		case arg.IsVariable():
			pattern[i] = b[arg.Value] // Any when unbound
		default:
			pattern[i] = IRI(arg.Value)
		}
	}

	facts, err := s.MatchContext(ctx, Pattern{Subject: pattern[0], Predicate: pattern[1], Object: pattern[2]})
	if err != nil {
		return nil, err
	}

	var out []Binding
FactLoop:
	for _, f := range facts {
		row := [3]Term{f.Subject, f.Predicate, f.Object}
		nb := maps.Clone(b)
		for i, arg := range atom.Args {
			if !arg.IsVariable() || arg.IsAnonymous() {
				continue
			}
			// A variable repeated within the atom must bind consistently.
			if prev, ok := nb[arg.Value]; ok && prev != row[i] {
				continue FactLoop
			}
			nb[arg.Value] = row[i]
		}
		out = append(out, nb)
	}
	return out, nil
}

func allBound(vars []string, bound map[string]bool) bool {
	for _, v := range vars {
		if !bound[v] {
			return false
		}
	}
	return true
}

func applyConstraint(atom datalog.Atom, bindings []Binding, filters map[string]Filter) ([]Binding, error) {
	var kept []Binding
	for _, b := range bindings {
		ok, err := evalConstraint(atom, b, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, b)
		}
	}
	return kept, nil
}

func evalConstraint(atom datalog.Atom, b Binding, filters map[string]Filter) (bool, error) {
	if atom.Predicate == "neq" {
		resolve := func(arg datalog.Arg) string {
			if arg.IsVariable() {
				return b[arg.Value].Text()
			}
			return arg.Value
		}
		return resolve(atom.Args[0]) != resolve(atom.Args[1]), nil
	}

	value := b[atom.Args[0].Value]
	return filters[atom.Predicate](value, atom.Args[1].Value)
}

// Project extracts the named variables from each binding as rows.
func Project(bindings []Binding, vars ...string) ([][]Term, error) {
	rows := make([][]Term, 0, len(bindings))
	for _, b := range bindings {
		row := make([]Term, len(vars))
		for i, v := range vars {
			t, ok := b[v]
			if !ok {
				return nil, fmt.Errorf("%w: variable %s is not bound (have %s)", ErrInvalidQuery, v, strings.Join(slices.Sorted(maps.Keys(b)), ", "))
			}
			row[i] = t
		}
		rows = append(rows, row)
	}
	return rows, nil
}
