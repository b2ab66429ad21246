// Package intent classifies questions into one of a fixed set of intents
// and extracts the raw entity argument.
package intent

import (
	"errors"
	"fmt"
)

// ErrUnrecognized is returned when no rule matches a question. It is terminal.
var ErrUnrecognized = errors.New("unrecognized query")

// Intent is the kind of fact a question asks for.
type Intent int

const (
	Unknown Intent = iota
	President
	PrimeMinister
	Population
	Area
	Government
	Capital
	PresidentBirthday
	PrimeMinisterBirthday
	WhoIs
)

var intentNames = map[Intent]string{
	President:             "president",
	PrimeMinister:         "prime-minister",
	Population:            "population",
	Area:                  "area",
	Government:            "government",
	Capital:               "capital",
	PresidentBirthday:     "president-birthday",
	PrimeMinisterBirthday: "prime-minister-birthday",
	WhoIs:                 "who-is",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// Parse returns the intent with the given name.
func Parse(name string) (Intent, error) {
	for i, n := range intentNames {
		if n == name {
			return i, nil
		}
	}
	return Unknown, fmt.Errorf("unknown intent %q", name)
}

// All lists the intents in classification precedence order.
func All() []Intent {
	out := make([]Intent, 0, len(DefaultRules))
	for _, r := range DefaultRules {
		out = append(out, r.Intent)
	}
	return out
}

// Classification is the outcome of classifying a question.
type Classification struct {
	Intent   Intent
	Argument string // raw, not normalized
}
