package cli

import (
	"github.com/lite-lake/peerdns/internal/application/orchestrator"
	"github.com/lite-lake/peerdns/internal/config"
	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain/contract"
	"github.com/lite-lake/peerdns/internal/infrastructure/backup"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
	"github.com/lite-lake/peerdns/internal/probe"
	dnsprovider "github.com/lite-lake/peerdns/internal/providers/dns"
)

// factory is replaced in tests to hand out a shared memory store.
var factory = dnsprovider.NewFactory()

func newProber(cfg *config.Config, m *metrics.Metrics) *probe.Prober {
	return probe.New(probe.Config{
		Timeout:     cfg.Timeout,
		Retries:     cfg.Retries,
		Concurrency: cfg.Concurrency,
		RetryPause:  constants.RetryPause,
	}, probe.WithMetrics(m))
}

func newStore(cfg *config.Config) (contract.RecordStore, error) {
	opts := dnsprovider.DefaultOptions()
	opts.MaxAttempts = cfg.Retries

	store, err := factory.Create(cfg.Provider, cfg.Credentials, opts)
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		return dnsprovider.NewDryRunStore(store), nil
	}
	return store, nil
}

func openBackups(cfg *config.Config, m *metrics.Metrics) (*backup.Manager, error) {
	store, err := backup.Open(cfg.Backup.Backend, cfg.Backup.Path)
	if err != nil {
		return nil, err
	}
	return backup.NewManager(store, backup.WithMetrics(m)), nil
}

// newSyncDeps wires everything a sync needs. The returned func releases the snapshot store.
// A dry run opens no snapshot store.
func newSyncDeps(cfg *config.Config) (orchestrator.Deps, func(), error) {
	m := metrics.New()

	store, err := newStore(cfg)
	if err != nil {
		return orchestrator.Deps{}, nil, err
	}

	deps := orchestrator.Deps{
		Store:   store,
		Prober:  newProber(cfg, m),
		Metrics: m,
	}
	if cfg.DryRun {
		return deps, func() {}, nil
	}

	backups, err := openBackups(cfg, m)
	if err != nil {
		return orchestrator.Deps{}, nil, err
	}
	deps.Backups = backups
	return deps, func() { _ = backups.Store().Close() }, nil
}
