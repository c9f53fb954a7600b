package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lite-lake/peerdns/internal/application/orchestrator"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
)

func newProbeCommand(ctx *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Probe peers and print their latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.Config
			m := metrics.New()
			w := orchestrator.NewWorkflow(cfg, orchestrator.Deps{
				Prober:  newProber(cfg, m),
				Metrics: m,
			})

			report, err := w.Probe(logger.WithOperation(cmd.Context(), "probe"))
			if err != nil && !errors.Is(err, domain.ErrNoReachablePeers) {
				return err
			}
			renderProbes(cmd.OutOrStdout(), report)
			return err
		},
	}
}
