// Package query holds one parameterized graph query per intent and runs
// them against the fact store.
package query

import (
	"fmt"
	"strings"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

// Template is the graph query for one intent. Subject is the variable the
// entity key constrains; Select lists the projected variables in row order.
type Template struct {
	Body    []string
	Subject string
	Select  []string
}

func triple(s, p, o string) string {
	return fmt.Sprintf("triples(%s, %s, %s)", s, p, o)
}

func iri[T ~string](v T) string { return fmt.Sprintf("%q", string(v)) }

func isA(v string, k vocab.Kind) string { return triple(v, iri(vocab.IsA), iri(k)) }

// Templates maps every intent to its query.
var Templates = map[intent.Intent]Template{
	intent.President: {
		Body:    []string{isA("C", vocab.Country), triple("P", iri(vocab.PresidentOf), "C")},
		Subject: "C", Select: []string{"P"},
	},
	intent.PrimeMinister: {
		Body:    []string{isA("C", vocab.Country), triple("P", iri(vocab.PrimeMinisterOf), "C")},
		Subject: "C", Select: []string{"P"},
	},
	intent.Population: {
		Body:    []string{isA("C", vocab.Country), triple("C", iri(vocab.Population), "N")},
		Subject: "C", Select: []string{"N"},
	},
	intent.Area: {
		Body:    []string{isA("C", vocab.Country), triple("C", iri(vocab.Area), "N")},
		Subject: "C", Select: []string{"N"},
	},
	intent.Government: {
		Body:    []string{isA("C", vocab.Country), triple("C", iri(vocab.GovernmentType), "G")},
		Subject: "C", Select: []string{"G"},
	},
	intent.Capital: {
		Body:    []string{isA("C", vocab.Country), triple("X", iri(vocab.CapitalOf), "C")},
		Subject: "C", Select: []string{"X"},
	},
	intent.PresidentBirthday: {
		Body: []string{
			isA("C", vocab.Country),
			triple("P", iri(vocab.PresidentOf), "C"),
			triple("P", iri(vocab.Birthday), "B"),
		},
		Subject: "C", Select: []string{"B"},
	},
	intent.PrimeMinisterBirthday: {
		Body: []string{
			isA("C", vocab.Country),
			triple("P", iri(vocab.PrimeMinisterOf), "C"),
			triple("P", iri(vocab.Birthday), "B"),
		},
		Subject: "C", Select: []string{"B"},
	},
	// The role bound by job is also the office predicate linking the
	// person to the country.
	intent.WhoIs: {
		Body:    []string{triple("X", iri(vocab.Job), "R"), triple("X", "R", "C")},
		Subject: "X", Select: []string{"R", "C"},
	},
}

// Instantiate renders the template as a Datalog query whose subject is
// constrained by filter(Subject, "key").
func (t Template) Instantiate(filter, key string) string {
	atoms := append([]string{}, t.Body...)
	atoms = append(atoms, fmt.Sprintf("%s(%s, %q)", filter, t.Subject, key))
	return strings.Join(atoms, ", ")
}
