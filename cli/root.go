// Package cli implements the zkresidency command line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dimidumo/zkresidency/config"
	"github.com/dimidumo/zkresidency/logging"
	"github.com/dimidumo/zkresidency/sdk"
)

// app is the state shared by the commands, filled in before any of them runs.
type app struct {
	envFile  string
	logLevel string
	baseURL  string

	cfg    config.Config
	logger zerolog.Logger
}

// NewRootCommand returns the zkresidency command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "zkresidency",
		Short:             "Generate and verify zk-email proofs of the ZK Residency invite",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env",
		"file with environment variables to load, ignored if missing")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.baseURL, "registry", "",
		"registry base URL (default "+sdk.DefaultBaseURL+")")

	root.AddCommand(
		a.proveCmd(),
		a.vkeyCmd(),
		a.verifyCmd(),
		a.calldataCmd(),
		a.solidityCmd(),
		a.decodeCommandCmd(),
		a.workerCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogPretty, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) newSDK() *sdk.SDK {
	return sdk.New(append(a.cfg.SDKOptions(), sdk.WithLogger(a.logger))...)
}

// Execute runs the command line tool and exits on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
