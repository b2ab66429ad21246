// Package ntriples persists fact stores as N-Triples. Literal datatypes are
// written as XSD types so that a dump loads back into an identical store.
package ntriples

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/knakk/rdf"

	"github.com/duynguyendang/geoqa/pkg/kb"
)

const xsd = "http://www.w3.org/2001/XMLSchema#"

// Datatype IRIs used for literals.
const (
	XSDString          = xsd + "string"
	XSDDate            = xsd + "date"
	XSDPositiveInteger = xsd + "positiveInteger"
)

// CompressedExt marks files that are S2 compressed.
const CompressedExt = ".s2"

var ErrUnsupported = errors.New("unsupported N-Triples term")

const batchSize = 1000

// Source yields the facts to dump.
type Source interface {
	MatchContext(ctx context.Context, p kb.Pattern) ([]kb.Fact, error)
}

// Sink receives loaded facts.
type Sink interface {
	InsertBatch(facts []kb.Fact) (int, error)
}

// ToRDF converts a fact to an rdf triple.
func ToRDF(f kb.Fact) (rdf.Triple, error) {
	subj, err := rdf.NewIRI(f.Subject.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("subject %s: %w", f.Subject, err)
	}
	pred, err := rdf.NewIRI(f.Predicate.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("predicate %s: %w", f.Predicate, err)
	}

	var obj rdf.Object
	switch {
	case f.Object.IsIdentifier():
		iri, err := rdf.NewIRI(f.Object.Value)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("object %s: %w", f.Object, err)
		}
		obj = iri
	case f.Object.IsLiteral():
		dt, err := rdf.NewIRI(datatypeIRI(f.Object.Datatype))
		if err != nil {
			return rdf.Triple{}, err
		}
		obj = rdf.NewTypedLiteral(f.Object.Value, dt)
	default:
		return rdf.Triple{}, fmt.Errorf("%w: wildcard object", ErrUnsupported)
	}

	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}, nil
}

func datatypeIRI(d kb.Datatype) string {
	switch d {
	case kb.LiteralDate:
		return XSDDate
	case kb.LiteralPositiveInteger:
		return XSDPositiveInteger
	}
	return XSDString
}

// FromRDF converts an rdf triple to a fact.
func FromRDF(t rdf.Triple) (kb.Fact, error) {
	subj, ok := t.Subj.(rdf.IRI)
	if !ok {
		return kb.Fact{}, fmt.Errorf("%w: blank subject %s", ErrUnsupported, t.Subj)
	}
	pred, ok := t.Pred.(rdf.IRI)
	if !ok {
		return kb.Fact{}, fmt.Errorf("%w: predicate %s", ErrUnsupported, t.Pred)
	}

	var obj kb.Term
	switch o := t.Obj.(type) {
	case rdf.IRI:
		obj = kb.IRI(o.String())
	case rdf.Literal:
		lit, err := literalTerm(o)
		if err != nil {
			return kb.Fact{}, err
		}
		obj = lit
	default:
		return kb.Fact{}, fmt.Errorf("%w: object %s", ErrUnsupported, t.Obj)
	}

	return kb.NewFact(kb.IRI(subj.String()), kb.IRI(pred.String()), obj), nil
}

func literalTerm(l rdf.Literal) (kb.Term, error) {
	value := l.String()
	switch l.DataType.String() {
	case XSDDate:
		return kb.DateLiteral(value), nil
	case XSDPositiveInteger, xsd + "integer", xsd + "nonNegativeInteger":
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil || n == 0 {
			return kb.Term{}, fmt.Errorf("%w: %q is not a positive integer", ErrUnsupported, value)
		}
		return kb.IntegerLiteral(n), nil
	case XSDString, "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString", "":
		return kb.StringLiteral(value), nil
	}
	return kb.Term{}, fmt.Errorf("%w: literal datatype %s", ErrUnsupported, l.DataType)
}

// Encode writes every fact of src to w in insertion order.
func Encode(ctx context.Context, w io.Writer, src Source) (int, error) {
	facts, err := src.MatchContext(ctx, kb.Pattern{})
	if err != nil {
		return 0, fmt.Errorf("failed to read facts: %w", err)
	}

	enc := rdf.NewTripleEncoder(w, rdf.NTriples)
	for i, f := range facts {
		t, err := ToRDF(f)
		if err != nil {
			return i, err
		}
		if err := enc.Encode(t); err != nil {
			return i, fmt.Errorf("failed to encode %s: %w", f, err)
		}
	}
	if err := enc.Close(); err != nil {
		return len(facts), err
	}
	return len(facts), nil
}

// Decode reads N-Triples from r into dst and returns the number of triples
// read. Duplicates count once per line read.
func Decode(ctx context.Context, r io.Reader, dst Sink) (int, error) {
	dec := rdf.NewTripleDecoder(r, rdf.NTriples)
	batch := make([]kb.Fact, 0, batchSize)
	read := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := dst.InsertBatch(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return read, err
		}
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return read, fmt.Errorf("triple %d: %w", read+1, err)
		}
		f, err := FromRDF(t)
		if err != nil {
			return read, fmt.Errorf("triple %d: %w", read+1, err)
		}
		batch = append(batch, f)
		read++
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return read, err
			}
		}
	}
	return read, flush()
}

// WriteFile dumps src to path through a temporary file. Paths ending in
// CompressedExt are S2 compressed.
func WriteFile(ctx context.Context, path string, src Source) (n int, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	var w io.Writer = buf
	var zw *s2.Writer
	if strings.HasSuffix(path, CompressedExt) {
		zw = s2.NewWriter(buf)
		w = zw
	}

	if n, err = Encode(ctx, w, src); err != nil {
		return n, err
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return n, err
		}
	}
	if err = buf.Flush(); err != nil {
		return n, err
	}
	if err = tmp.Close(); err != nil {
		return n, err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("failed to move dump into place: %w", err)
	}
	return n, nil
}

// ReadFile loads path into dst. A missing file yields an error wrapping
// os.ErrNotExist.
func ReadFile(ctx context.Context, path string, dst Sink) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, CompressedExt) {
		r = s2.NewReader(r)
	}
	return Decode(ctx, r, dst)
}
