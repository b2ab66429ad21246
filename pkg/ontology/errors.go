package ontology

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks a relation that was skipped while building.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes one skipped relation of one record.
type MalformedRecordError struct {
	CountryLink string
	Relation    string
	Reason      string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s: %s", e.CountryLink, e.Relation, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }
