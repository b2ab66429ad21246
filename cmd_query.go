package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/duynguyendang/geoqa/pkg/intent"
	"github.com/duynguyendang/geoqa/pkg/repl"
	"github.com/duynguyendang/geoqa/pkg/service"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

func (a *app) questionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "question <text>",
		Short: "Answer one question",
		Long: `Answer one question against the ontology file and print the answer.

An unrecognized question prints "unrecognized query." and exits with
status 1. A question with no answer prints "no results found.".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.openOntology(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()

			ans, err := a.newService(mgr).Ask(cmd.Context(), strings.Join(args, " "))
			if service.IsFailure(err) {
				return err
			}
			fmt.Fprintln(a.out, ans.Text)
			if errors.Is(err, intent.ErrUnrecognized) {
				return exitError{code: 1}
			}
			return nil
		},
	}
}

func (a *app) replCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Ask questions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.openOntology(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()

			cfg := repl.DefaultConfig()
			cfg.Quiet = quiet
			return repl.New(a.newService(mgr), cfg, a.in, a.out).Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no banner or prompt")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate counts over the ontology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.openOntology(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()

			sum, err := a.newService(mgr).Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			return yaml.NewEncoder(a.out).Encode(sum)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the ontology relations as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(map[string]any{"relations": vocab.Schema}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
