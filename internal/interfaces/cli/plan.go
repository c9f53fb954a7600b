package cli

import (
	"github.com/spf13/cobra"

	"github.com/lite-lake/peerdns/internal/application/orchestrator"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
)

func newPlanCommand(ctx *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the records the next sync would publish",
		Long:  "Probe and rank the peers, then print the planned records as zone file lines. Nothing is written.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.Config
			m := metrics.New()
			w := orchestrator.NewWorkflow(cfg, orchestrator.Deps{
				Prober:  newProber(cfg, m),
				Metrics: m,
			})

			report, err := w.Plan(logger.WithOperation(cmd.Context(), "plan"))
			if err != nil {
				return err
			}
			return renderPlan(cmd.OutOrStdout(), report)
		},
	}
}
