package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lite-lake/peerdns/internal/application/reconcile"
	"github.com/lite-lake/peerdns/internal/config"
	"github.com/lite-lake/peerdns/internal/domain/contract"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/service"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
	"github.com/lite-lake/peerdns/internal/infrastructure/backup"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
	"github.com/lite-lake/peerdns/internal/peers"
	"github.com/lite-lake/peerdns/internal/probe"
)

// Deps are the collaborators of a run. Backups and Metrics may be nil.
type Deps struct {
	Store   contract.RecordStore
	Prober  *probe.Prober
	Backups *backup.Manager
	Metrics *metrics.Metrics
	// LoadPeers defaults to peers.Load.
	LoadPeers func(path string) ([]entity.Peer, error)
	Now       func() time.Time
}

// Report collects everything a run observed, for rendering by the CLI.
type Report struct {
	Peers    []entity.Peer
	Probes   []entity.ProbeResult
	Ranked   []entity.ProbeResult
	Plan     *valueobject.RecordPlan
	State    *reconcile.ZoneState
	Snapshot *entity.Snapshot
	Pruned   int
	Summary  *reconcile.Summary
	Warnings []string
}

type Workflow struct {
	cfg        *config.Config
	deps       Deps
	planner    *service.PlannerService
	reconciler *reconcile.Reconciler
}

func NewWorkflow(cfg *config.Config, deps Deps) *Workflow {
	if deps.LoadPeers == nil {
		deps.LoadPeers = peers.Load
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	layout := service.Layout{RecordName: cfg.RecordName, Domain: cfg.Domain, Prefix: cfg.Prefix}
	strategy := cfg.ParsedStrategy()

	w := &Workflow{
		cfg:  cfg,
		deps: deps,
		planner: service.NewPlannerService(service.PlannerConfig{
			Layout:        layout,
			Strategy:      strategy,
			TTL:           cfg.TTL,
			Weight:        cfg.Weight,
			PriorityStart: cfg.PriorityStart,
			PriorityStep:  cfg.PriorityStep,
		}),
	}
	if deps.Store != nil {
		w.reconciler = reconcile.NewReconciler(deps.Store, reconcile.Config{
			Zone:     cfg.Zone,
			Layout:   layout,
			Strategy: strategy,
		}, deps.Metrics)
	}
	return w
}

// Probe loads the peer list, probes every peer and ranks the reachable ones.
// With no reachable peer it returns the report so far and domain.ErrNoReachablePeers.
func (w *Workflow) Probe(ctx context.Context) (*Report, error) {
	report := &Report{}

	list, err := w.deps.LoadPeers(w.cfg.PeersFile)
	if err != nil {
		return report, fmt.Errorf("load peers: %w", err)
	}
	report.Peers = list

	err = w.deps.Metrics.TimedOperation(ctx, "probe", func() error {
		report.Probes = w.deps.Prober.ProbeAll(ctx, list)
		return ctx.Err()
	})
	if err != nil {
		return report, err
	}

	ranked, err := service.Rank(report.Probes, w.maxRecords(ctx))
	if err != nil {
		logger.FromContext(ctx).Error("no reachable peers, leaving zone untouched", "candidates", len(list))
		return report, err
	}
	report.Ranked = ranked

	logger.FromContext(ctx).Info("probe finished", "candidates", len(list), "selected", len(ranked))
	return report, nil
}

// maxRecords caps the configured limit at what the priority ladder can hold.
func (w *Workflow) maxRecords(ctx context.Context) int {
	limit := w.cfg.MaxRecords
	capacity := w.planner.Capacity()
	if capacity > 0 && (limit == 0 || limit > capacity) {
		if limit > 0 {
			logger.FromContext(ctx).Warn("max_records exceeds priority range", "max_records", limit, "capacity", capacity)
		}
		limit = capacity
	}
	return limit
}

// Plan runs Probe and maps the ranked peers to records. It makes no store calls.
func (w *Workflow) Plan(ctx context.Context) (*Report, error) {
	report, err := w.Probe(ctx)
	if err != nil {
		return report, err
	}

	plan, err := w.planner.Plan(report.Ranked)
	if err != nil {
		return report, fmt.Errorf("plan records: %w", err)
	}
	report.Plan = plan
	return report, nil
}

// Sync runs the whole pipeline: probe, plan, fetch, snapshot, apply.
// A non-nil error means the zone was not touched. Mutation failures are in Report.Summary.
func (w *Workflow) Sync(ctx context.Context) (*Report, error) {
	if w.reconciler == nil {
		return nil, errors.New("sync requires a record store")
	}

	var report *Report
	err := w.deps.Metrics.TimedOperation(ctx, "sync", func() error {
		var err error
		report, err = w.sync(ctx)
		return err
	})
	defer w.writeMetrics(ctx, report)
	if err != nil {
		return report, err
	}

	if !report.Summary.HasFailures() {
		w.deps.Metrics.SetPeerGauges(len(report.Ranked), report.Plan.Len())
		w.deps.Metrics.MarkSuccess(w.deps.Now())
	}
	return report, nil
}

func (w *Workflow) sync(ctx context.Context) (*Report, error) {
	report, err := w.Plan(ctx)
	if err != nil {
		return report, err
	}

	err = w.deps.Metrics.TimedOperation(ctx, "fetch", func() error {
		state, ferr := w.reconciler.Fetch(ctx)
		report.State = state
		return ferr
	})
	if err != nil {
		return report, err
	}

	w.snapshot(ctx, report)

	_ = w.deps.Metrics.TimedOperation(ctx, "apply", func() error {
		report.Summary = w.reconciler.Apply(ctx, report.Plan, report.State)
		if report.Summary.HasFailures() {
			return fmt.Errorf("%d record mutations failed", report.Summary.Failed)
		}
		return nil
	})
	return report, nil
}

// snapshot saves the fetched state and applies retention. Failures are warnings.
// A dry run neither saves nor prunes.
func (w *Workflow) snapshot(ctx context.Context, report *Report) {
	if w.deps.Backups == nil {
		return
	}
	log := logger.FromContext(ctx)
	if w.cfg.DryRun {
		log.Info("dry-run, skipping snapshot and pruning")
		return
	}
	key := w.cfg.SnapshotKey()

	snap, err := w.deps.Backups.Backup(ctx, w.deps.Store.Name(), key, report.State.All())
	if err != nil {
		log.Warn("snapshot failed, continuing", "error", err)
		report.Warnings = append(report.Warnings, err.Error())
		return
	}
	report.Snapshot = snap

	pruned, err := w.deps.Backups.Prune(ctx, key, w.cfg.Backup.Retention)
	report.Pruned = pruned
	if err != nil {
		log.Warn("snapshot pruning failed, continuing", "error", err)
		report.Warnings = append(report.Warnings, err.Error())
	}
}

func (w *Workflow) writeMetrics(ctx context.Context, report *Report) {
	if w.deps.Metrics == nil || w.cfg.MetricsFile == "" {
		return
	}
	if err := w.deps.Metrics.WriteTextfile(w.cfg.MetricsFile); err != nil {
		logger.FromContext(ctx).Warn("writing metrics textfile failed", "path", w.cfg.MetricsFile, "error", err)
		report.Warnings = append(report.Warnings, err.Error())
	}
}
