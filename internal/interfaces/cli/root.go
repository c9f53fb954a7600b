package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lite-lake/peerdns/internal/config"
	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

var Version = "dev"

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode maps a command error onto the documented exit codes.
func ExitCode(err error) int {
	if err == nil {
		return constants.ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, domain.ErrNoReachablePeers):
		return constants.ExitNoReachable
	case errors.Is(err, domain.ErrStoreRead):
		return constants.ExitStoreFailure
	default:
		return constants.ExitInputError
	}
}

// Context is the state shared by every subcommand of one invocation.
type Context struct {
	ConfigPath string
	flags      *flagSet
	Config     *config.Config
}

func NewContext() *Context {
	return &Context{flags: newFlagSet()}
}

func NewRootCommand(ctx *Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "peerdns",
		Short: "Publish the fastest reachable peers as DNS records",
		Long: "Peerdns probes a list of peers over TCP, ranks the reachable ones by latency " +
			"and publishes them as SRV or TXT records at a DNS provider.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["config"] == "skip" {
				return nil
			}
			return ctx.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.ConfigPath, "config", "c", "", "Configuration file (YAML)")
	ctx.flags.bind(rootCmd)

	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newBackupCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// load reads the config file, overlays changed flags and validates the result.
func (c *Context) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.ConfigPath, c.ConfigPath != "")
	if err != nil {
		return withCode(constants.ExitInputError, err)
	}
	c.flags.overlay(cmd, cfg)
	cfg.Normalize()

	if cfg.Debug {
		logger.Init(&logger.Config{
			Level:     logger.ParseLevel(true),
			Format:    os.Getenv(constants.EnvLogFormat),
			AddSource: true,
		})
	}

	if err := cfg.Validate(); err != nil {
		return withCode(constants.ExitInputError, fmt.Errorf("invalid configuration: %w", err))
	}
	c.Config = cfg
	return nil
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	ctx := NewContext()
	rootCmd := NewRootCommand(ctx)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: "+err.Error()))
	}
	return ExitCode(err)
}

func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
