package datalog

import (
	"fmt"
	"strings"
	"unicode"
)

// Arg is one argument of an atom. Quoted arguments are always constants.
type Arg struct {
	Value  string
	Quoted bool
}

// IsVariable reports whether the argument names a variable: an unquoted
// name starting with '?', an upper-case letter, or the anonymous '_'.
func (a Arg) IsVariable() bool {
	if a.Quoted || a.Value == "" {
		return false
	}
	if a.Value == "_" || strings.HasPrefix(a.Value, "?") {
		return true
	}
	return unicode.IsUpper([]rune(a.Value)[0])
}

// IsAnonymous reports whether the argument is the '_' placeholder.
func (a Arg) IsAnonymous() bool {
	return !a.Quoted && a.Value == "_"
}

func (a Arg) String() string {
	if a.Quoted {
		return fmt.Sprintf("%q", a.Value)
	}
	return a.Value
}

// Atom represents a single unit in a Datalog query (e.g., triples(S, P, O) or neq(A, B)).
type Atom struct {
	Predicate string
	Args      []Arg
}

// Variables returns the distinct named variables of the atom in argument order.
func (a Atom) Variables() []string {
	var vars []string
	seen := make(map[string]bool)
	for _, arg := range a.Args {
		if arg.IsVariable() && !arg.IsAnonymous() && !seen[arg.Value] {
			seen[arg.Value] = true
			vars = append(vars, arg.Value)
		}
	}
	return vars
}

func (a Atom) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return a.Predicate + "(" + strings.Join(parts, ", ") + ")"
}

// Parse parses a Datalog query string which may contain multiple atoms.
// It supports data atoms like 'triples', constraints like 'contains' or
// 'regex', and the '!=' sugar for 'neq'.
func Parse(query string) ([]Atom, error) {
	query = strings.TrimSpace(query)
	// "Head :- Body": only the body is evaluated
	if idx := strings.Index(query, ":-"); idx != -1 {
		query = query[idx+2:]
	}
	query = strings.TrimSpace(query)
	query = strings.TrimSuffix(query, ".")
	query = strings.TrimPrefix(query, "?-")

	rawAtoms := SmartSplit(query)
	if len(rawAtoms) == 0 {
		return nil, fmt.Errorf("empty query")
	}

	var parsed []Atom
	for _, raw := range rawAtoms {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if lhs, rhs, ok := splitInequality(raw); ok {
			parsed = append(parsed, Atom{
				Predicate: "neq",
				Args:      []Arg{parseArg(lhs), parseArg(rhs)},
			})
			continue
		}

		pred, args, err := parseAtomString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse atom '%s': %w", raw, err)
		}
		parsed = append(parsed, Atom{Predicate: pred, Args: args})
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("empty query")
	}
	return parsed, nil
}

// splitInequality splits "A != B" outside of quotes and parentheses.
func splitInequality(s string) (string, string, bool) {
	inQuote := false
	var quoteChar rune
	depth := 0
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		r := runes[i]
		switch {
		case inQuote:
			if r == quoteChar {
				inQuote = false
			}
		case r == '"' || r == '\'':
			inQuote = true
			quoteChar = r
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == '!' && runes[i+1] == '=' && depth == 0:
			return strings.TrimSpace(string(runes[:i])), strings.TrimSpace(string(runes[i+2:])), true
		}
	}
	return "", "", false
}

// parseAtomString parses "predicate(arg1, arg2, ...)"
func parseAtomString(s string) (string, []Arg, error) {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")

	if start == -1 || end == -1 || start >= end {
		return "", nil, fmt.Errorf("expected format 'predicate(args...)' but got '%s'", s)
	}
	if strings.TrimSpace(s[end+1:]) != "" {
		return "", nil, fmt.Errorf("unexpected text after ')' in '%s'", s)
	}

	predicate := strings.TrimSpace(s[:start])
	if predicate == "" {
		return "", nil, fmt.Errorf("missing predicate name in '%s'", s)
	}

	var args []Arg
	for _, raw := range SmartSplit(s[start+1 : end]) {
		args = append(args, parseArg(raw))
	}
	return predicate, args, nil
}

func parseArg(raw string) Arg {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' || first == '\'') && first == last {
			return Arg{Value: raw[1 : len(raw)-1], Quoted: true}
		}
	}
	return Arg{Value: raw}
}

// SmartSplit splits a string by comma, correctly handling quotes and parentheses.
// e.g. "a, b, 'c,d'" -> ["a", "b", "'c,d'"]
func SmartSplit(s string) []string {
	var results []string
	var current strings.Builder
	depth := 0
	inQuote := false
	var quoteChar rune

	for _, r := range s {
		switch r {
		case '"', '\'':
			if inQuote {
				if r == quoteChar {
					inQuote = false
				}
			} else {
				inQuote = true
				quoteChar = r
			}
			current.WriteRune(r)
		case '(':
			if !inQuote {
				depth++
			}
			current.WriteRune(r)
		case ')':
			if !inQuote {
				depth--
			}
			current.WriteRune(r)
		case ',':
			if !inQuote && depth == 0 {
				results = append(results, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		results = append(results, strings.TrimSpace(current.String()))
	}
	return results
}
