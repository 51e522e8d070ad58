package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/graphql"
	"github.com/dd0wney/owlgraph/pkg/health"
	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GraphQL over the stored graph, plus /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gs, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer gs.Close()

			executor, err := graphql.NewExecutor(gs, nil)
			if err != nil {
				return err
			}
			stats := gs.GetStatistics()
			a.metrics.UpdateStorageTotals(stats.NodeCount, stats.EdgeCount)

			mux := http.NewServeMux()
			mux.Handle("/graphql", graphql.NewHandler(executor, a.logger))
			mux.Handle("/metrics", a.metrics.Handler())
			checker := newHealthChecker(gs)
			mux.Handle("/health", checker.Handler())
			mux.Handle("/ready", checker.ReadyHandler())

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			return serve(cmd.Context(), srv, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	return cmd
}

// newHealthChecker checks the loaded hierarchy, its snapshot and the heap.
// Readiness only requires the hierarchy.
func newHealthChecker(gs *storage.GraphStorage) *health.Checker {
	graph := health.GraphCheck(
		func() health.GraphStats {
			s := gs.GetStatistics()
			return health.GraphStats{Nodes: s.NodeCount, Edges: s.EdgeCount, Commits: s.TotalCommits}
		},
		func() bool {
			_, err := gs.GetNodeByKey(materialize.RootKey)
			return err == nil
		},
	)

	checker := health.NewChecker()
	checker.Register("graph", graph)
	checker.Register("snapshot", health.SnapshotCheck(gs.SnapshotPath(), 0))
	checker.Register("memory", health.MemoryCheck(nil))
	checker.RegisterReadiness("graph", graph)
	return checker
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", logging.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
