package intent

import (
	"regexp"
	"strings"
)

// word is one name token. Unicode letters count, like word characters in
// the question shapes users actually type.
const word = `[\p{L}\p{N}_]+`

// Rule pairs a question shape with its argument extractor.
type Rule struct {
	Intent  Intent
	Shape   *regexp.Regexp
	Extract func(question string) string
}

// shape builds an anchored pattern from a keyword prefix and a tail.
func shape(prefix, tail string) *regexp.Regexp {
	return regexp.MustCompile(`^` + prefix + tail)
}

const (
	nameThenMarks = `(?:\s+` + word + `)+\s*\?+\s*$`
	nameThenBorn  = `(?:\s+` + word + `)+\s+born\s*\?+\s*$`
)

// afterLast returns the text after the last match of sep, with question
// marks removed.
func afterLast(sep string) func(string) string {
	re := regexp.MustCompile(sep)
	return func(q string) string {
		parts := re.Split(q, -1)
		return strings.TrimSpace(strings.ReplaceAll(parts[len(parts)-1], "?", ""))
	}
}

var trailingBorn = regexp.MustCompile(`\s+born\s*\?+\s*$`)

// bornOf extracts the name between the last "of" and the trailing "born".
func bornOf(q string) string {
	return afterLast(`of\s+`)(trailingBorn.ReplaceAllString(q, ""))
}

var whoIsPrefix = regexp.MustCompile(`^Who\s+is\s+`)

func whoIs(q string) string {
	return strings.TrimSpace(strings.ReplaceAll(whoIsPrefix.ReplaceAllString(q, ""), "?", ""))
}

// DefaultRules is the classification table. Order is precedence: the first
// rule whose shape matches wins, so the generic who-is rule comes last.
var DefaultRules = []Rule{
	{President, shape(`Who\s+is\s+the\s+president\s+of`, nameThenMarks), afterLast(`president\s+of\s+`)},
	{PrimeMinister, shape(`Who\s+is\s+the\s+prime\s+minister\s+of`, nameThenMarks), afterLast(`prime\s+minister\s+of\s+`)},
	{Population, shape(`What\s+is\s+the\s+population\s+of`, nameThenMarks), afterLast(`population\s+of\s+`)},
	{Area, shape(`What\s+is\s+the\s+area\s+of`, nameThenMarks), afterLast(`area\s+of\s+`)},
	{Government, shape(`What\s+is\s+the\s+government\s+of`, nameThenMarks), afterLast(`government\s+of\s+`)},
	{Capital, shape(`What\s+is\s+the\s+capital\s+of`, nameThenMarks), afterLast(`capital\s+of\s+`)},
	{PresidentBirthday, shape(`When\s+was\s+the\s+president\s+of`, nameThenBorn), bornOf},
	{PrimeMinisterBirthday, shape(`When\s+was\s+the\s+prime\s+minister\s+of`, nameThenBorn), bornOf},
	{WhoIs, shape(`Who\s+is`, nameThenMarks), whoIs},
}
