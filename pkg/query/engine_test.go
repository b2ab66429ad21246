package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/ontology"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

func buildStore(t *testing.T) *kb.Store {
	t.Helper()
	s, err := kb.Open(nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	records := []ontology.Record{
		{
			CountryLink:       "/wiki/France",
			PresidentLink:     ontology.Ptr("/wiki/Emmanuel_Macron"),
			PresidentBirthday: ontology.Ptr("1977-12-21"),
			CapitalLink:       ontology.Ptr("/wiki/Paris"),
			Population:        ontology.Ptr(uint64(67000000)),
			Area:              ontology.Ptr(uint64(643801)),
			GovernmentTypes: ontology.NewGovernmentTypes(
				"unitary_state", "/wiki/Unitary_state",
				"semi_presidential_system", "/wiki/Semi-presidential_system",
			),
		},
		{
			CountryLink:   "/wiki/Equatorial_Guinea",
			PresidentLink: ontology.Ptr("/wiki/Teodoro_Obiang_Nguema_Mbasogo"),
		},
		{
			CountryLink:   "/wiki/Guinea",
			PresidentLink: ontology.Ptr("/wiki/Mamady_Doumbouya"),
		},
		{
			CountryLink:           "/wiki/New_Zealand",
			PrimeMinisterLink:     ontology.Ptr("/wiki/Christopher_Luxon"),
			PrimeMinisterBirthday: ontology.Ptr("1970-07-19"),
		},
		{CountryLink: "/wiki/Vatican_City"},
	}
	_, err = ontology.NewBuilder(s, nil).Build(context.Background(), records)
	require.NoError(t, err)
	return s
}

func e(local string) kb.Term { return vocab.Entity("/wiki/" + local) }

func TestExecuteTemplates(t *testing.T) {
	engine := NewEngine(buildStore(t), MatchExactFirst)
	tests := []struct {
		intent intent.Intent
		key    string
		want   []Row
	}{
		{intent.President, "france", []Row{{e("Emmanuel_Macron")}}},
		{intent.PrimeMinister, "new_zealand", []Row{{e("Christopher_Luxon")}}},
		{intent.Population, "france", []Row{{kb.IntegerLiteral(67000000)}}},
		{intent.Area, "france", []Row{{kb.IntegerLiteral(643801)}}},
		{intent.Capital, "france", []Row{{e("Paris")}}},
		{intent.Government, "france", []Row{{e("Unitary_state")}, {e("Semi-presidential_system")}}},
		{intent.PresidentBirthday, "france", []Row{{kb.DateLiteral("1977-12-21")}}},
		{intent.PrimeMinisterBirthday, "new_zealand", []Row{{kb.DateLiteral("1970-07-19")}}},
		{intent.WhoIs, "emmanuel_macron", []Row{{vocab.RolePresident.Term(), e("France")}}},
		{intent.WhoIs, "luxon", []Row{{vocab.RolePrimeMinister.Term(), e("New_Zealand")}}},
		{intent.Capital, "vatican_city", nil},
		{intent.President, "atlantis", nil},
	}

	for _, tt := range tests {
		t.Run(tt.intent.String()+"/"+tt.key, func(t *testing.T) {
			rows, err := engine.Execute(context.Background(), tt.intent, tt.key)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, rows)
				return
			}
			assert.Equal(t, tt.want, rows)
		})
	}
}

// "guinea" is a substring of "equatorial_guinea"; each mode resolves the
// ambiguity differently.
func TestGuineaAmbiguity(t *testing.T) {
	s := buildStore(t)
	tests := []struct {
		mode MatchMode
		key  string
		want []Row
	}{
		{MatchSubstring, "guinea", []Row{{e("Teodoro_Obiang_Nguema_Mbasogo")}, {e("Mamady_Doumbouya")}}},
		{MatchExact, "guinea", []Row{{e("Mamady_Doumbouya")}}},
		{MatchExactFirst, "guinea", []Row{{e("Mamady_Doumbouya")}}},
		{MatchExact, "equatorial_guinea", []Row{{e("Teodoro_Obiang_Nguema_Mbasogo")}}},
		{MatchExact, "equatorial", nil},
		{MatchExactFirst, "equatorial", []Row{{e("Teodoro_Obiang_Nguema_Mbasogo")}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.key, func(t *testing.T) {
			rows, err := NewEngine(s, tt.mode).Execute(context.Background(), intent.President, tt.key)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, rows)
				return
			}
			assert.Equal(t, tt.want, rows)
		})
	}
}

// Keys taken from the IRI's host or path only match in substring mode.
func TestFallbackIgnoresIRIPrefix(t *testing.T) {
	s := buildStore(t)
	for _, key := range []string{"wiki", "en", "org", "https"} {
		rows, err := NewEngine(s, MatchExactFirst).Execute(context.Background(), intent.President, key)
		require.NoError(t, err)
		assert.Empty(t, rows, key)

		rows, err = NewEngine(s, MatchSubstring).Execute(context.Background(), intent.President, key)
		require.NoError(t, err)
		assert.NotEmpty(t, rows, key)
	}
}

func TestExecuteRejectsUnsafeKeys(t *testing.T) {
	engine := NewEngine(buildStore(t), MatchSubstring)
	for _, key := range []string{"", "France", `x"), triples(A, B, C`} {
		_, err := engine.Execute(context.Background(), intent.President, key)
		assert.ErrorIs(t, err, ErrInvalidArgument, key)
	}

	_, err := engine.Execute(context.Background(), intent.Unknown, "france")
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestParseMatchMode(t *testing.T) {
	mode, err := ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchExactFirst, mode)

	mode, err = ParseMatchMode("substring")
	require.NoError(t, err)
	assert.Equal(t, MatchSubstring, mode)

	_, err = ParseMatchMode("fuzzy")
	assert.Error(t, err)
}

func TestEveryIntentHasATemplate(t *testing.T) {
	for _, in := range intent.All() {
		_, ok := Templates[in]
		assert.True(t, ok, in.String())
	}
}
