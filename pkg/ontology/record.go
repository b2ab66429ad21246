// Package ontology maps per-country entity records onto triples.
package ontology

import (
	"encoding/json"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// GovernmentTypes maps a government type name to its wiki link, in the
// order the types were listed for the country.
type GovernmentTypes = orderedmap.OrderedMap[string, string]

// NewGovernmentTypes builds a mapping from alternating name, link pairs.
func NewGovernmentTypes(nameLinks ...string) *GovernmentTypes {
	m := orderedmap.New[string, string]()
	for i := 0; i+1 < len(nameLinks); i += 2 {
		m.Set(nameLinks[i], nameLinks[i+1])
	}
	return m
}

// Record is everything extracted for one country. A nil field means the
// value was not found; it never produces a triple.
type Record struct {
	CountryLink string `json:"country_link"`

	PresidentName     *string `json:"president_name,omitempty"`
	PresidentLink     *string `json:"president_link,omitempty"`
	PresidentBirthday *string `json:"president_bday,omitempty"`

	PrimeMinisterName     *string `json:"prime_minister_name,omitempty"`
	PrimeMinisterLink     *string `json:"prime_minister_link,omitempty"`
	PrimeMinisterBirthday *string `json:"prime_minister_bday,omitempty"`

	CapitalName *string `json:"capital_name,omitempty"`
	CapitalLink *string `json:"capital_link,omitempty"`

	Population *uint64 `json:"population,omitempty"`
	Area       *uint64 `json:"area,omitempty"`

	GovernmentTypes *GovernmentTypes `json:"government,omitempty"`
}

// Ptr returns a pointer to v, for filling optional record fields.
func Ptr[T any](v T) *T { return &v }

// LoadRecords reads a JSON array of records.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records %s: %w", path, err)
	}
	return records, nil
}

// SaveRecords writes records as an indented JSON array.
func SaveRecords(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}
