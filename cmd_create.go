package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/duynguyendang/geoqa/pkg/extract"
	"github.com/duynguyendang/geoqa/pkg/kb"
	"github.com/duynguyendang/geoqa/pkg/ntriples"
	"github.com/duynguyendang/geoqa/pkg/ontology"
)

func (a *app) createCmd() *cobra.Command {
	var (
		recordsPath string
		crawl       bool
		saveRecords string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build the ontology and dump it as N-Triples",
		Long: `Build the country ontology from entity records and write it as N-Triples.

Records come from a JSON file (--records) or from crawling Wikipedia
(--crawl). Relations with malformed values are skipped and logged; the
rest of the country is still built.

Examples:
  geoqa create --crawl --save-records countries.json
  geoqa create --records countries.json --out ontology.nt.s2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if crawl == (recordsPath != "") {
				return fmt.Errorf("exactly one of --records or --crawl is required")
			}
			if out == "" {
				out = a.cfg.Ontology
			}

			lock := flock.New(out + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("failed to lock %s: %w", out, err)
			}
			if !locked {
				return fmt.Errorf("another create is writing %s", out)
			}
			defer lock.Unlock()

			var records []ontology.Record
			if crawl {
				c := extract.NewCrawler(a.cfg.Crawl.UserAgent, a.cfg.Crawl.Concurrency)
				c.Logger = a.logger
				if records, err = c.Crawl(ctx); err != nil {
					return err
				}
				if saveRecords != "" {
					if err := ontology.SaveRecords(saveRecords, records); err != nil {
						return err
					}
				}
			} else if records, err = ontology.LoadRecords(recordsPath); err != nil {
				return err
			}

			s, err := kb.Open(nil)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := ontology.NewBuilder(s, a.logger).Build(ctx, records)
			if err != nil {
				return err
			}
			n, err := ntriples.WriteFile(ctx, out, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d triples for %d records to %s (%d relations skipped)\n",
				n, report.Records, out, len(report.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "JSON file of entity records")
	cmd.Flags().BoolVar(&crawl, "crawl", false, "crawl Wikipedia for records")
	cmd.Flags().StringVar(&saveRecords, "save-records", "", "with --crawl, also save the records to this JSON file")
	cmd.Flags().StringVar(&out, "out", "", "output file (default the configured ontology path)")
	return cmd
}
