// Package answer renders query rows as answer text.
package answer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/query"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

// Sentinel answers.
const (
	NoResults    = "no results found."
	Unrecognized = "unrecognized query."
)

// ErrEmptyResult is returned when asked to format no rows.
var ErrEmptyResult = errors.New("empty result")

var printer = message.NewPrinter(language.English)

// Format renders rows for the intent that produced them.
func Format(in intent.Intent, rows []query.Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyResult
	}
	first := rows[0]
	if len(first) == 0 {
		return "", fmt.Errorf("%s: row has no columns", in)
	}

	switch in {
	case intent.Population:
		return Grouped(first[0])
	case intent.Area:
		s, err := Grouped(first[0])
		if err != nil {
			return "", err
		}
		return s + " km2", nil
	case intent.President, intent.PrimeMinister, intent.Capital:
		return DisplayName(first[0]), nil
	case intent.PresidentBirthday, intent.PrimeMinisterBirthday:
		return first[0].Text(), nil
	case intent.Government:
		names := make([]string, 0, len(rows))
		for _, r := range rows {
			names = append(names, DisplayName(r[0]))
		}
		return strings.Join(names, ", "), nil
	case intent.WhoIs:
		parts := make([]string, 0, len(rows))
		for _, r := range rows {
			if len(r) < 2 {
				return "", fmt.Errorf("%s: row needs role and country", in)
			}
			parts = append(parts, spaced(r[0])+" of "+spaced(r[1]))
		}
		return strings.Join(parts, ", "), nil
	}
	return "", fmt.Errorf("no formatter for intent %s", in)
}

// Grouped renders a positive-integer literal with thousands separators.
func Grouped(t kb.Term) (string, error) {
	n, err := t.Int()
	if err != nil {
		return "", err
	}
	return printer.Sprintf("%d", n), nil
}

// DisplayName renders an identifier as words with each word capitalized:
// ".../wiki/emmanuel_MACRON" becomes "Emmanuel Macron".
func DisplayName(t kb.Term) string {
	words := strings.Split(vocab.LocalName(t.Text()), "_")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// spaced renders an identifier's local name with underscores as spaces and
// the casing untouched.
func spaced(t kb.Term) string {
	return strings.ReplaceAll(vocab.LocalName(t.Text()), "_", " ")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
