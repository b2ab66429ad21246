package kb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TermKind distinguishes identifiers from literals.
type TermKind uint8

const (
	kindAny TermKind = iota
	KindIdentifier
	KindLiteral
)

// Datatype is the type carried by a literal.
type Datatype uint8

const (
	DatatypeNone Datatype = iota
	LiteralString
	LiteralDate
	LiteralPositiveInteger
)

// DateLayout is the lexical form of date literals.
const DateLayout = "2006-01-02"

func (d Datatype) String() string {
	switch d {
	case LiteralString:
		return "string"
	case LiteralDate:
		return "date"
	case LiteralPositiveInteger:
		return "positive-integer"
	}
	return "none"
}

// Term is a node of the graph: an identifier or a typed literal.
// The zero Term is Any, the wildcard used in patterns.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype Datatype
}

// Any matches every term in a Pattern position.
var Any = Term{}

// IRI returns an identifier term.
func IRI(value string) Term {
	return Term{Kind: KindIdentifier, Value: value}
}

// StringLiteral returns a string literal.
func StringLiteral(value string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: LiteralString}
}

// DateLiteral returns a date literal. The value is kept verbatim.
func DateLiteral(value string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: LiteralDate}
}

// IntegerLiteral returns a positive-integer literal.
func IntegerLiteral(n uint64) Term {
	return Term{Kind: KindLiteral, Value: strconv.FormatUint(n, 10), Datatype: LiteralPositiveInteger}
}

func (t Term) IsAny() bool        { return t.Kind == kindAny }
func (t Term) IsIdentifier() bool { return t.Kind == KindIdentifier }
func (t Term) IsLiteral() bool    { return t.Kind == KindLiteral }

// Text returns the textual form of the term: the identifier string or the
// literal's lexical value.
func (t Term) Text() string {
	return t.Value
}

// Int returns the value of a positive-integer literal.
func (t Term) Int() (uint64, error) {
	if t.Kind != KindLiteral || t.Datatype != LiteralPositiveInteger {
		return 0, fmt.Errorf("%w: %s is not a positive integer", ErrTypeMismatch, t)
	}
	n, err := strconv.ParseUint(t.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return n, nil
}

// Validate checks that the term is well formed for storage.
func (t Term) Validate() error {
	switch t.Kind {
	case KindIdentifier:
		if strings.TrimSpace(t.Value) == "" {
			return fmt.Errorf("%w: empty identifier", ErrInvalidTerm)
		}
		return nil
	case KindLiteral:
		switch t.Datatype {
		case LiteralString:
			return nil
		case LiteralDate:
			if _, err := time.Parse(DateLayout, t.Value); err != nil {
				return fmt.Errorf("%w: date %q: %v", ErrInvalidTerm, t.Value, err)
			}
			return nil
		case LiteralPositiveInteger:
			n, err := strconv.ParseUint(t.Value, 10, 64)
			if err != nil || n == 0 {
				return fmt.Errorf("%w: %q is not a positive integer", ErrInvalidTerm, t.Value)
			}
			return nil
		}
		return fmt.Errorf("%w: literal without datatype", ErrInvalidTerm)
	}
	return fmt.Errorf("%w: wildcard is not a storable term", ErrInvalidTerm)
}

func (t Term) String() string {
	switch t.Kind {
	case KindIdentifier:
		return "<" + t.Value + ">"
	case KindLiteral:
		if t.Datatype == LiteralString {
			return strconv.Quote(t.Value)
		}
		return strconv.Quote(t.Value) + "^^" + t.Datatype.String()
	}
	return "_"
}

// dictKey is the dictionary form of a term. The type tag keeps an
// identifier and a literal with the same text apart.
func (t Term) dictKey() string {
	switch t.Kind {
	case KindIdentifier:
		return "I:" + t.Value
	case KindLiteral:
		switch t.Datatype {
		case LiteralDate:
			return "D:" + t.Value
		case LiteralPositiveInteger:
			return "N:" + t.Value
		}
		return "S:" + t.Value
	}
	return ""
}

func termFromDictKey(key string) (Term, error) {
	if len(key) < 2 || key[1] != ':' {
		return Term{}, fmt.Errorf("%w: malformed dictionary entry %q", ErrCorrupt, key)
	}
	value := key[2:]
	switch key[0] {
	case 'I':
		return IRI(value), nil
	case 'S':
		return StringLiteral(value), nil
	case 'D':
		return DateLiteral(value), nil
	case 'N':
		return Term{Kind: KindLiteral, Value: value, Datatype: LiteralPositiveInteger}, nil
	}
	return Term{}, fmt.Errorf("%w: unknown term tag in %q", ErrCorrupt, key)
}

// ContainsFold returns an object filter matching terms whose textual form
// contains needle, ignoring case.
func ContainsFold(needle string) func(Term) bool {
	needle = strings.ToLower(needle)
	return func(t Term) bool {
		return strings.Contains(strings.ToLower(t.Text()), needle)
	}
}
