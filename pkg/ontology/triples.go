package ontology

import (
	"strings"
	"time"

	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

// Triples maps a record to facts. Each problem skips only the relation it
// affects and is reported as a *MalformedRecordError.
func Triples(r Record) ([]kb.Fact, []error) {
	if strings.TrimSpace(r.CountryLink) == "" {
		return nil, []error{&MalformedRecordError{Relation: "country", Reason: "missing country link"}}
	}

	m := mapper{link: r.CountryLink, country: vocab.Entity(r.CountryLink)}
	m.add(m.country, vocab.IsA.Term(), vocab.Country.Term())

	m.capital(r.CapitalName, r.CapitalLink)
	m.leader("prime-minister", vocab.RolePrimeMinister, r.PrimeMinisterName, r.PrimeMinisterLink, r.PrimeMinisterBirthday)
	m.leader("president", vocab.RolePresident, r.PresidentName, r.PresidentLink, r.PresidentBirthday)
	m.quantity("population", vocab.Population, r.Population)
	m.quantity("area", vocab.Area, r.Area)
	m.governments(r.GovernmentTypes)

	return m.facts, m.errs
}

type mapper struct {
	link    string
	country kb.Term
	facts   []kb.Fact
	errs    []error
}

func (m *mapper) add(s, p, o kb.Term) {
	m.facts = append(m.facts, kb.NewFact(s, p, o))
}

func (m *mapper) skip(relation, reason string) {
	m.errs = append(m.errs, &MalformedRecordError{CountryLink: m.link, Relation: relation, Reason: reason})
}

// entity resolves the identifier of a named entity. A name without a link
// cannot be minted.
func (m *mapper) entity(relation string, name, link *string) (kb.Term, bool) {
	hasLink := link != nil && strings.TrimSpace(*link) != ""
	if !hasLink {
		if name != nil {
			m.skip(relation, "name "+*name+" has no link")
		}
		return kb.Term{}, false
	}
	return vocab.Entity(*link), true
}

func (m *mapper) capital(name, link *string) {
	city, ok := m.entity("capital", name, link)
	if !ok {
		return
	}
	m.add(city, vocab.IsA.Term(), vocab.City.Term())
	m.add(city, vocab.CapitalOf.Term(), m.country)
}

func (m *mapper) leader(relation string, role vocab.Role, name, link, birthday *string) {
	person, ok := m.entity(relation, name, link)
	if !ok {
		if birthday != nil {
			m.skip(relation+"-birthday", "birthday without a person")
		}
		return
	}
	m.add(person, vocab.IsA.Term(), vocab.Person.Term())
	m.add(person, role.Predicate().Term(), m.country)
	m.add(person, vocab.Job.Term(), role.Term())

	if birthday == nil {
		return
	}
	day := strings.TrimSpace(*birthday)
	if _, err := time.Parse(kb.DateLayout, day); err != nil {
		m.skip(relation+"-birthday", "birthday "+day+" is not a date")
		return
	}
	m.add(person, vocab.Birthday.Term(), kb.DateLiteral(day))
}

func (m *mapper) quantity(relation string, p vocab.Predicate, n *uint64) {
	if n == nil {
		return
	}
	if *n == 0 {
		m.skip(relation, "value must be positive")
		return
	}
	m.add(m.country, p.Term(), kb.IntegerLiteral(*n))
}

func (m *mapper) governments(types *GovernmentTypes) {
	if types == nil {
		return
	}
	for pair := types.Oldest(); pair != nil; pair = pair.Next() {
		if strings.TrimSpace(pair.Value) == "" {
			m.skip("government", "type "+pair.Key+" has no link")
			continue
		}
		gov := vocab.Entity(pair.Value)
		m.add(m.country, vocab.GovernmentType.Term(), gov)
		m.add(gov, vocab.GovernmentTypeOf.Term(), m.country)
	}
}
