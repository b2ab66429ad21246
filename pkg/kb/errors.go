package kb

import "errors"

var (
	ErrInvalidTerm  = errors.New("invalid term")
	ErrInvalidFact  = errors.New("invalid fact")
	ErrTypeMismatch = errors.New("literal type mismatch")
	ErrCorrupt      = errors.New("corrupt store entry")
	ErrClosed       = errors.New("store is closed")
	ErrInvalidQuery = errors.New("invalid query")
)
