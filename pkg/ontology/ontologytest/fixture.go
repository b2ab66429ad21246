// Package ontologytest provides a small country ontology for tests.
package ontologytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/ontology"
)

var ptr = ontology.Ptr[string]

// Records returns six countries covering every relation, the
// Guinea/Equatorial Guinea name overlap and a country without a capital.
func Records() []ontology.Record {
	return []ontology.Record{
		{
			CountryLink:           "/wiki/France",
			PresidentName:         ptr("emmanuel_macron"),
			PresidentLink:         ptr("/wiki/Emmanuel_Macron"),
			PresidentBirthday:     ptr("1977-12-21"),
			PrimeMinisterName:     ptr("michel_barnier"),
			PrimeMinisterLink:     ptr("/wiki/Michel_Barnier"),
			PrimeMinisterBirthday: ptr("1951-01-09"),
			CapitalName:           ptr("paris"),
			CapitalLink:           ptr("/wiki/Paris"),
			Population:            ontology.Ptr(uint64(67000000)),
			Area:                  ontology.Ptr(uint64(643801)),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"unitary_state", "/wiki/Unitary_state",
				"semi_presidential_system", "/wiki/Semi-presidential_system",
				"republic", "/wiki/Republic",
			),
		},
		{
			CountryLink:   "/wiki/Guinea",
			PresidentName: ptr("mamady_doumbouya"),
			PresidentLink: ptr("/wiki/Mamady_Doumbouya"),
			CapitalName:   ptr("conakry"),
			CapitalLink:   ptr("/wiki/Conakry"),
			Population:    ontology.Ptr(uint64(13132795)),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"unitary_state", "/wiki/Unitary_state",
				"provisional_government", "/wiki/Provisional_government",
			),
		},
		{
			CountryLink:   "/wiki/Equatorial_Guinea",
			PresidentName: ptr("teodoro_obiang_nguema_mbasogo"),
			PresidentLink: ptr("/wiki/Teodoro_Obiang_Nguema_Mbasogo"),
			CapitalName:   ptr("malabo"),
			CapitalLink:   ptr("/wiki/Malabo"),
			Population:    ontology.Ptr(uint64(1505588)),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"unitary_state", "/wiki/Unitary_state",
				"presidential_republic", "/wiki/Presidential_republic",
			),
		},
		{
			CountryLink:           "/wiki/United_Kingdom",
			PrimeMinisterName:     ptr("keir_starmer"),
			PrimeMinisterLink:     ptr("/wiki/Keir_Starmer"),
			PrimeMinisterBirthday: ptr("1962-09-02"),
			CapitalName:           ptr("london"),
			CapitalLink:           ptr("/wiki/London"),
			Area:                  ontology.Ptr(uint64(242495)),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"unitary_state", "/wiki/Unitary_state",
				"parliamentary_system", "/wiki/Parliamentary_system",
				"constitutional_monarchy", "/wiki/Constitutional_monarchy",
			),
		},
		{
			CountryLink:           "/wiki/New_Zealand",
			PrimeMinisterName:     ptr("christopher_luxon"),
			PrimeMinisterLink:     ptr("/wiki/Christopher_Luxon"),
			PrimeMinisterBirthday: ptr("1970-07-19"),
			CapitalName:           ptr("wellington"),
			CapitalLink:           ptr("/wiki/Wellington"),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"constitutional_monarchy", "/wiki/Constitutional_monarchy",
			),
		},
		{
			CountryLink:   "/wiki/Nauru",
			PresidentName: ptr("david_adeang"),
			PresidentLink: ptr("/wiki/David_Adeang"),
			Population:    ontology.Ptr(uint64(11680)),
			Area:          ontology.Ptr(uint64(21)),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"parliamentary_republic", "/wiki/Parliamentary_republic",
			),
		},
	}
}

// Open builds the fixture into a fresh in-memory store closed at test end.
func Open(t testing.TB) *kb.Store {
	t.Helper()
	s, err := kb.Open(nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = ontology.NewBuilder(s, nil).Build(context.Background(), Records())
	require.NoError(t, err)
	return s
}
