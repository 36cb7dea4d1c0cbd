package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/on-the-ground/composable_ive_go/dependencies"
	"github.com/on-the-ground/composable_ive_go/features/counter"
	"github.com/on-the-ground/composable_ive_go/store"
)

type CounterOptions struct {
	*RootOptions
	Wait time.Duration
}

func NewCounterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CounterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "counter <action>...",
		Short: "Send button taps to a counter and print its final state",
		Long: `Send button taps to a counter and print its final state as JSON.

Actions are increment (+), decrement (-), fact and timer. Effects started by
fact and timer get --wait to finish before the counter is closed.

Example:
  tutorial counter + + -
  tutorial counter fact --wait 3s`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounter(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().DurationVar(&opts.Wait, "wait", 0, "how long running effects may take after the last action")

	return cmd
}

func runCounter(ctx context.Context, opts *CounterOptions, args []string, out, changes io.Writer) error {
	actions := make([]counter.Action, 0, len(args))
	for _, arg := range args {
		action, err := counter.ParseAction(arg)
		if err != nil {
			return err
		}
		actions = append(actions, action)
	}

	s := store.New(ctx, counter.State{}, counter.Reducer(dependencies.Live(opts.Config)),
		storeOptions(opts.RootOptions, "counter", changes)...)
	defer s.Close()

	for _, action := range actions {
		if err := s.SendContext(ctx, action); err != nil {
			return err
		}
	}

	if opts.Wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, opts.Wait)
		defer cancel()
		if err := s.Wait(waitCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	state := s.State()
	if err := writeJSON(out, state); err != nil {
		return err
	}
	return checkExpectation(opts.Expect, state)
}

// storeOptions applies the store settings of the loaded config.
func storeOptions(opts *RootOptions, name string, changes io.Writer) []store.Option {
	storeOpts := []store.Option{
		store.WithName(name),
		store.WithLogger(opts.Logger),
		store.WithBufferSize(opts.Config.Store.BufferSize),
	}
	if opts.Config.Store.ChangePrinting {
		storeOpts = append(storeOpts, store.WithChangePrinting(func(diff string) {
			fmt.Fprint(changes, diff)
		}))
	}
	return storeOpts
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
