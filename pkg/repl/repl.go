// Package repl runs an interactive question loop over the QA service.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/duynguyendang/geoqa/pkg/service"
)

// Prompt is printed before each question.
const Prompt = "> "

// Config holds configuration for the REPL environment.
type Config struct {
	// MaxSuggestions caps the country names offered after an empty answer.
	MaxSuggestions int
	// Quiet suppresses the banner and prompts, for piped input.
	Quiet bool
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{MaxSuggestions: 3}
}

// REPL reads questions from in and writes answers to out.
type REPL struct {
	qa     *service.QAService
	config Config
	in     io.Reader
	out    io.Writer
}

// New creates a REPL.
func New(qa *service.QAService, cfg Config, in io.Reader, out io.Writer) *REPL {
	return &REPL{qa: qa, config: cfg, in: in, out: out}
}

// Run loops until quit, end of input or ctx is done. Only failures of the
// service end the loop with an error.
func (r *REPL) Run(ctx context.Context) error {
	if !r.config.Quiet {
		fmt.Fprintln(r.out, "--- GeoQA ---")
		fmt.Fprintln(r.out, "Ask about a country's president, prime minister, population, area, government or capital.")
		fmt.Fprintln(r.out, "Type ':help' for commands, 'quit' to stop.")
	}

	scanner := bufio.NewScanner(r.in)
	for {
		if !r.config.Quiet {
			fmt.Fprint(r.out, Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case strings.HasPrefix(line, ":"):
			if err := r.command(ctx, line); err != nil {
				fmt.Fprintf(r.out, "error: %v\n", err)
			}
			continue
		}

		if err := r.ask(ctx, line); err != nil {
			return err
		}
	}
}

func (r *REPL) ask(ctx context.Context, question string) error {
	a, err := r.qa.Ask(ctx, question)
	if service.IsFailure(err) {
		return err
	}
	fmt.Fprintln(r.out, a.Text)

	if errors.Is(err, service.ErrNoResults) && a.Argument != "" {
		names, err := r.qa.CountryNames(ctx)
		if err != nil {
			return err
		}
		if s := Suggest(a.Argument, names, r.config.MaxSuggestions); len(s) > 0 {
			fmt.Fprintf(r.out, "did you mean: %s?\n", strings.Join(s, ", "))
		}
	}
	return nil
}
