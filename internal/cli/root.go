// Package cli is the tutorial command line: it drives feature stores from
// arguments and serves the counter to remote clients.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_ive_go/config"
	"github.com/on-the-ground/composable_ive_go/logging"
)

var ErrInvalidOverride = errors.New("override must look like key=value")

// RootOptions holds global flags and what PersistentPreRunE builds from them.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Overrides  []string
	Expect     string

	Config config.Config
	Logger *zap.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tutorial",
		Short: "Run the composable architecture tutorial features",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				logging.Sync(opts.Logger)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging and state change printing")
	cmd.PersistentFlags().StringArrayVar(&opts.Overrides, "set", nil, "override a config key, as in --set shared.backend=file")
	cmd.PersistentFlags().StringVar(&opts.Expect, "expect", "", "expr-lang condition the printed state must satisfy, as in 'count == 2'")

	cmd.AddCommand(NewCounterCommand(opts))
	cmd.AddCommand(NewSharedCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) setup() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	for _, kv := range o.Overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidOverride, kv)
		}
		if err := cfg.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
		cfg.Store.ChangePrinting = true
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	o.Config = cfg
	o.Logger = logger
	return nil
}
