package main

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/duynguyendang/geoqa/internal/manager"
	"github.com/duynguyendang/geoqa/pkg/kb/store"
	"github.com/duynguyendang/geoqa/pkg/mcp"
	"github.com/duynguyendang/geoqa/pkg/metrics"
	"github.com/duynguyendang/geoqa/pkg/server"
	"github.com/duynguyendang/geoqa/pkg/service"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. The server starts even when the ontology file is
missing; /health reports unavailable until POST /v1/reload succeeds.

Examples:
  geoqa serve --addr :9000
  geoqa serve --watch            # reload when the ontology file changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watch = a.cfg.Server.Watch
			}

			mgr := manager.NewOntologyManager(a.cfg.Ontology, store.DefaultConfig())
			defer mgr.Close()

			m := metrics.New()
			qa := a.newService(mgr, service.WithMetrics(m))
			srv := server.NewServer(mgr, qa, m)

			if _, err := mgr.Load(ctx); err != nil {
				if !errors.Is(err, manager.ErrStoreUnavailable) {
					return err
				}
				a.logger.Warn("starting without an ontology", "error", err)
			}
			if watch {
				go func() {
					if err := mgr.Watch(ctx, manager.DefaultDebounce); err != nil && ctx.Err() == nil {
						a.logger.Error("ontology watcher stopped", "error", err)
					}
				}()
			}

			err := srv.Run(ctx, addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr, or :$PORT)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the ontology when its file changes")
	return cmd
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.openOntology(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()
			return mcp.Run(a.newService(mgr), Version)
		},
	}
}
