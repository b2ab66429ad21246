package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duynguyendang/geoqa/internal/config"
	"github.com/duynguyendang/geoqa/internal/logging"
	"github.com/duynguyendang/geoqa/internal/manager"
	"github.com/duynguyendang/geoqa/pkg/kb/store"
	"github.com/duynguyendang/geoqa/pkg/service"
)

// Version is set at build time.
var Version = "dev"

// exitError ends the process with a status code and no message.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	var exit exitError
	switch {
	case err == nil:
	case errors.As(err, &exit):
		os.Exit(exit.code)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries state shared by the subcommands.
type app struct {
	v         *viper.Viper
	cfgFile   string
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	in  io.Reader
	out io.Writer
	err io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{v: config.New(), in: in, out: out, err: errOut}

	root := &cobra.Command{
		Use:   "geoqa",
		Short: "Answer factual questions about countries",
		Long: `geoqa builds a country ontology from Wikipedia and answers questions
such as "Who is the president of France?" or "What is the area of Peru?"
against it.

Examples:
  geoqa create --crawl --out ontology.nt      # scrape Wikipedia and dump triples
  geoqa create --records countries.json       # build from saved records
  geoqa question "What is the capital of Chile?"
  geoqa serve                                 # HTTP API on :8080`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default geoqa.yaml in . or the user config dir)")
	flags.String("ontology", "", "ontology N-Triples file (.s2 for compressed)")
	flags.String("match-mode", "", "entity matching: exact-first, exact or substring")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	_ = a.v.BindPFlag("ontology", flags.Lookup("ontology"))
	_ = a.v.BindPFlag("match_mode", flags.Lookup("match-mode"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		a.createCmd(),
		a.questionCmd(),
		a.replCmd(),
		a.statsCmd(),
		a.schemaCmd(),
		a.serveCmd(),
		a.mcpCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, a.logCloser, err = logging.Setup(cfg.Log, a.err)
	return err
}

func (a *app) teardown() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// openOntology loads the configured ontology file.
func (a *app) openOntology(ctx context.Context) (*manager.OntologyManager, error) {
	mgr := manager.NewOntologyManager(a.cfg.Ontology, store.DefaultConfig())
	if _, err := mgr.Load(ctx); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (a *app) newService(p service.StoreProvider, opts ...service.Option) *service.QAService {
	opts = append([]service.Option{
		service.WithMatchMode(a.cfg.Mode()),
		service.WithCacheSize(a.cfg.Cache.Size),
		service.WithLogger(a.logger),
	}, opts...)
	return service.NewQAService(p, opts...)
}
