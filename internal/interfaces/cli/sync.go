package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lite-lake/peerdns/internal/application/orchestrator"
	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

func newSyncCommand(ctx *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Probe peers and publish the fastest as DNS records",
		Long: "Probe every peer, rank the reachable ones and replace the managed records in the zone. " +
			"The zone is snapshotted before any write; --dry-run skips the snapshot.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx)
		},
	}
}

func runSync(cmd *cobra.Command, ctx *Context) error {
	cfg := ctx.Config

	deps, closeDeps, err := newSyncDeps(cfg)
	if err != nil {
		return withCode(constants.ExitInputError, err)
	}
	defer closeDeps()

	runCtx := logger.WithOperation(cmd.Context(), "sync")
	report, err := orchestrator.NewWorkflow(cfg, deps).Sync(runCtx)
	if err != nil {
		return err
	}

	renderSummary(cmd.OutOrStdout(), report, cfg.DryRun)
	if report.Summary.HasFailures() {
		return withCode(constants.ExitPartial, fmt.Errorf("%d of %d record operations failed",
			report.Summary.Failed, report.Summary.Failed+report.Summary.Mutations()))
	}
	return nil
}
