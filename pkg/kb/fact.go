package kb

import "fmt"

// Fact is one subject-predicate-object triple.
type Fact struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewFact builds a fact.
func NewFact(subject, predicate, object Term) Fact {
	return Fact{Subject: subject, Predicate: predicate, Object: object}
}

// Validate checks the fact's shape: identifier subject and predicate, any
// well formed object.
func (f Fact) Validate() error {
	if !f.Subject.IsIdentifier() {
		return fmt.Errorf("%w: subject %s must be an identifier", ErrInvalidFact, f.Subject)
	}
	if !f.Predicate.IsIdentifier() {
		return fmt.Errorf("%w: predicate %s must be an identifier", ErrInvalidFact, f.Predicate)
	}
	for _, t := range []Term{f.Subject, f.Predicate, f.Object} {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFact, err)
		}
	}
	return nil
}

func (f Fact) String() string {
	return fmt.Sprintf("%s %s %s .", f.Subject, f.Predicate, f.Object)
}

// Pattern selects facts. Any in a position leaves it unbound.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Matches reports whether f satisfies the pattern.
func (p Pattern) Matches(f Fact) bool {
	return (p.Subject.IsAny() || p.Subject == f.Subject) &&
		(p.Predicate.IsAny() || p.Predicate == f.Predicate) &&
		(p.Object.IsAny() || p.Object == f.Object)
}
