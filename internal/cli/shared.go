package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/config"
	"github.com/on-the-ground/composable_ive_go/features/sharedstate"
	"github.com/on-the-ground/composable_ive_go/shared"
	"github.com/on-the-ground/composable_ive_go/shared/s3storage"
	"github.com/on-the-ground/composable_ive_go/shared/sqlitekv"
	"github.com/on-the-ground/composable_ive_go/store"
)

var (
	ErrUnknownBackend = errors.New("unknown shared backend")
	ErrUnknownCommand = errors.New("unknown shared command")
)

// Backends lists the names accepted by --backend.
var Backends = []string{"memory", "sqlite", "file", "s3"}

type SharedOptions struct {
	*RootOptions
	Backend string
}

func NewSharedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SharedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shared <increment|decrement|reset|show>",
		Short: "Change the counter statistics kept in a shared key",
		Long: `Change the counter statistics kept in a shared key and print them.

The statistics live in the backend named by --backend, so every run against a
persistent backend sees the changes of the runs before it.

Example:
  tutorial shared increment --backend file
  tutorial shared show --backend sqlite --set shared.sqlite.path=/tmp/stats.db`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"increment", "decrement", "reset", "show"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("backend") {
				opts.Config.Shared.Backend = opts.Backend
			}
			return runShared(cmd.Context(), opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "memory", fmt.Sprintf("shared backend %v", Backends))

	return cmd
}

func sharedAction(command string) (sharedstate.Action, bool, error) {
	switch command {
	case "increment":
		return sharedstate.Counter{Action: sharedstate.IncrementButtonTapped{}}, true, nil
	case "decrement":
		return sharedstate.Counter{Action: sharedstate.DecrementButtonTapped{}}, true, nil
	case "reset":
		return sharedstate.Profile{Action: sharedstate.ResetStatsButtonTapped{}}, true, nil
	case "show":
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
}

func runShared(ctx context.Context, opts *SharedOptions, command string, out, changes io.Writer) error {
	action, send, err := sharedAction(command)
	if err != nil {
		return err
	}

	backend, closeBackend, err := OpenBackend(ctx, opts.Config, opts.Logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	s := store.New(ctx, sharedstate.NewState(sharedstate.StatsKey(backend)), sharedstate.Reducer(),
		storeOptions(opts.RootOptions, "sharedstate", changes)...)
	defer s.Close()

	if send {
		if err := s.SendContext(ctx, action); err != nil {
			return err
		}
		if err := s.Wait(ctx); err != nil {
			return err
		}
	}

	state := s.State()
	if msg := state.Counter.SaveError + state.Profile.SaveError; msg != "" {
		return fmt.Errorf("%w: %s", shared.ErrSave, msg)
	}
	stats := state.Counter.Stats.Load()
	if err := writeJSON(out, stats); err != nil {
		return err
	}
	return checkExpectation(opts.Expect, stats)
}

// OpenBackend builds the shared backend named by cfg.Shared.Backend. The returned
// func closes it along with any storage it owns.
func OpenBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*shared.Backend, func(), error) {
	notify := cfg.NotifyScope()

	switch cfg.Shared.Backend {
	case "memory":
		b := shared.NewInMemory(ctx, logger, notify)
		return b, func() { _ = b.Close() }, nil

	case "file":
		b, err := shared.NewFileStorage(ctx, cfg.Shared.File.Dir, shared.FileOptions{
			PollInterval: cfg.Shared.File.PollInterval,
			CacheMaxCost: cfg.Shared.File.CacheMaxCost,
		}, logger, notify)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil

	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Shared.SQLite.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		kv, err := sqlitekv.Open(cfg.Shared.SQLite.Path, cfg.Shared.SQLite.PollInterval, logger)
		if err != nil {
			return nil, nil, err
		}
		b := shared.NewAppStorage(ctx, kv, logger, notify)
		return b, func() {
			_ = b.Close()
			_ = kv.Close()
		}, nil

	case "s3":
		s3cfg := cfg.Shared.S3
		client := s3storage.NewClient(s3cfg.Region, s3cfg.Endpoint,
			os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"))
		kv := s3storage.New(client, s3cfg.Bucket, s3cfg.Prefix, s3cfg.PollInterval, logger)
		b := shared.NewAppStorage(ctx, kv, logger, notify)
		return b, func() {
			_ = b.Close()
			_ = kv.Close()
		}, nil
	}
	return nil, nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownBackend, cfg.Shared.Backend, Backends)
}
