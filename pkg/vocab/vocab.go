// Package vocab holds the fixed schema of the country ontology: predicate,
// kind and role identifiers and the helpers that mint and read them.
package vocab

import (
	"net/url"
	"strings"

	"github.com/duynguyendang/geoqa/pkg/kb"
)

const (
	// BaseURL prefixes every entity link.
	BaseURL = "https://en.wikipedia.org"
	// WikiPath is the path segment in front of an article name.
	WikiPath = "/wiki/"

	wikiPrefix = BaseURL + WikiPath
)

// Predicate is one of the schema's relation identifiers.
type Predicate string

const (
	IsA              Predicate = wikiPrefix + "Is-a"
	PresidentOf      Predicate = wikiPrefix + "President"
	PrimeMinisterOf  Predicate = wikiPrefix + "Prime_minister"
	Job              Predicate = wikiPrefix + "Job"
	Birthday         Predicate = wikiPrefix + "Birthday"
	Population       Predicate = wikiPrefix + "Population"
	Area             Predicate = wikiPrefix + "Area"
	CapitalOf        Predicate = wikiPrefix + "Capital_city"
	GovernmentType   Predicate = wikiPrefix + "Government"
	GovernmentTypeOf Predicate = "http://example.org/government_to_country"
)

// Term returns the predicate as a store identifier.
func (p Predicate) Term() kb.Term { return kb.IRI(string(p)) }

func (p Predicate) String() string { return string(p) }

// Kind is an entity class, the object of an is-a fact.
type Kind string

const (
	Country Kind = wikiPrefix + "Country"
	City    Kind = wikiPrefix + "City"
	Person  Kind = wikiPrefix + "Person"
)

func (k Kind) Term() kb.Term { return kb.IRI(string(k)) }

// Role is the object of a job fact. Role identifiers are the identifiers of
// the matching office predicate, so a role bound from a job fact can be used
// directly as a predicate.
type Role string

const (
	RolePresident     = Role(PresidentOf)
	RolePrimeMinister = Role(PrimeMinisterOf)
)

func (r Role) Term() kb.Term { return kb.IRI(string(r)) }

// Predicate returns the office predicate of the role.
func (r Role) Predicate() Predicate { return Predicate(r) }

// Cardinality describes how many objects a subject may have for a relation.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Relation documents one predicate of the schema.
type Relation struct {
	Name        string      `yaml:"name" json:"name"`
	Predicate   Predicate   `yaml:"predicate" json:"predicate"`
	Subject     string      `yaml:"subject" json:"subject"`
	Object      string      `yaml:"object" json:"object"`
	Cardinality Cardinality `yaml:"cardinality" json:"cardinality"`
}

// Schema lists every relation of the ontology.
var Schema = []Relation{
	{"is-a", IsA, "any", "kind (Country, City, Person)", Many},
	{"president-of", PresidentOf, "person", "country", One},
	{"prime-minister-of", PrimeMinisterOf, "person", "country", One},
	{"job", Job, "person", "role (President, Prime_minister)", Many},
	{"birthday", Birthday, "person", "date literal", One},
	{"population", Population, "country", "positive-integer literal", One},
	{"area", Area, "country", "positive-integer literal (km2)", One},
	{"capital-of", CapitalOf, "city", "country", One},
	{"government-type", GovernmentType, "country", "government type", Many},
	{"government-type-of", GovernmentTypeOf, "government type", "country", Many},
}

// EntityIRI mints the identifier for a wiki link. Links that are already
// absolute are kept as they are.
func EntityIRI(link string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = WikiPath + link
	}
	return BaseURL + link
}

// Entity returns the store identifier for a wiki link.
func Entity(link string) kb.Term { return kb.IRI(EntityIRI(link)) }

// LocalName strips the base URL and the wiki path from an identifier and
// decodes percent-escapes. Other identifiers are returned unchanged.
func LocalName(iri string) string {
	name := strings.TrimPrefix(iri, BaseURL)
	name = strings.TrimPrefix(name, WikiPath)
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
