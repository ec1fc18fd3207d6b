package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"entityforge/internal/config"
	"entityforge/internal/logging"
)

type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	undo   func()
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), undo: func() {}}

	root := &cobra.Command{
		Use:           "entityforge",
		Short:         "Synthesize entity types from templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.undo()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "entityforge.json", "Path to config JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	config.RegisterFlags(flags)

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newDescribeCmd(a))
	root.AddCommand(newDDLCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, undo, err := logging.Setup(logging.LogOpts{
		Verbose:  a.verbose,
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Color:    "auto",
	})
	if err != nil {
		return err
	}
	a.logger, a.undo = logger, undo
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
