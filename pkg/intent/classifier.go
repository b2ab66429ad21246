package intent

import (
	"fmt"
	"strings"
)

// Classifier applies an ordered rule table to questions.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules, or DefaultRules when none
// are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify matches the trimmed question against each rule in order.
func (c *Classifier) Classify(question string) (Classification, error) {
	q := strings.TrimSpace(question)
	for _, r := range c.rules {
		if !r.Shape.MatchString(q) {
			continue
		}
		arg := r.Extract(q)
		if arg == "" {
			return Classification{}, fmt.Errorf("%w: %s question without a name", ErrUnrecognized, r.Intent)
		}
		return Classification{Intent: r.Intent, Argument: arg}, nil
	}
	return Classification{}, ErrUnrecognized
}
