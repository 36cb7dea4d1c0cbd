package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/internal/server"
	"github.com/on-the-ground/composable_ive_go/store"
)

const metricsNamespace = "tutorial"

type ServeOptions struct {
	*RootOptions
	Addr string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a counter over HTTP and WebSocket",
		Long: `Serve a counter to remote views.

Routes:
  GET  /state    current state as JSON
  POST /actions  {"action": "increment"}
  GET  /ws       state after every change; accepts actions
  GET  /metrics  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.Config.Server.Addr = opts.Addr
			}
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overriding server.addr")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	storeOpts := append(storeOptions(opts.RootOptions, "counter", cmd.ErrOrStderr()),
		store.WithMetrics(store.NewMetrics(registry, metricsNamespace)))
	s := store.New(ctx, counter.State{}, counter.Reducer(dependencies.Live(opts.Config)), storeOpts...)
	defer s.Close()

	srv := server.New[counter.State, counter.Action](s, counter.ParseAction, opts.Logger, registry)
	return srv.ListenAndServe(ctx, opts.Config.Server.Addr)
}
