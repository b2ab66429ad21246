package ontology

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duynguyendang/geoqa/pkg/kb"
)

// Inserter is the part of the fact store the builder writes to.
type Inserter interface {
	InsertBatch(facts []kb.Fact) (int, error)
}

// Report summarizes a build.
type Report struct {
	Records int     // records processed
	Facts   int     // new facts inserted
	Skipped []error // malformed relations, in record order
}

// Builder loads records into a fact store.
type Builder struct {
	store  Inserter
	logger *slog.Logger
}

// NewBuilder creates a builder writing to store.
func NewBuilder(store Inserter, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, logger: logger}
}

// Build inserts the facts of every record. Malformed relations are logged
// and collected in the report; only store failures abort the build.
func (b *Builder) Build(ctx context.Context, records []Record) (Report, error) {
	var report Report
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		facts, errs := Triples(r)
		for _, err := range errs {
			b.logger.Warn("skipping relation", "error", err)
		}
		report.Skipped = append(report.Skipped, errs...)
		report.Records++

		if len(facts) == 0 {
			continue
		}
		n, err := b.store.InsertBatch(facts)
		report.Facts += n
		if err != nil {
			return report, fmt.Errorf("failed to insert facts for %s: %w", r.CountryLink, err)
		}
	}

	b.logger.Info("ontology built",
		"records", report.Records,
		"facts", report.Facts,
		"skipped", len(report.Skipped),
	)
	return report, nil
}
