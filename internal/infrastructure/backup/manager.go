package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
)

type Manager struct {
	store   Store
	metrics *metrics.Metrics
	now     func() time.Time
}

type ManagerOption func(*Manager)

func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

func WithClock(now func() time.Time) ManagerOption {
	return func(mgr *Manager) { mgr.now = now }
}

func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Store() Store { return m.store }

// Backup captures records as a new snapshot under key.
func (m *Manager) Backup(ctx context.Context, provider string, key entity.SnapshotKey, records []entity.DNSRecord) (*entity.Snapshot, error) {
	snap := &entity.Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
		Provider:  provider,
		Key:       key,
		Records:   append([]entity.DNSRecord{}, records...),
	}

	err := m.store.Save(ctx, snap)
	m.metrics.ObserveBackup(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackupFailed, err)
	}

	logger.FromContext(ctx).Info("snapshot saved", "id", snap.ID, "key", key.String(), "records", len(snap.Records))
	return snap, nil
}

// Prune keeps the keep newest snapshots for key and deletes the rest.
// keep <= 0 disables pruning. It returns how many snapshots were removed.
func (m *Manager) Prune(ctx context.Context, key entity.SnapshotKey, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	infos, err := m.store.List(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("listing snapshots for %s: %w", key, err)
	}
	if len(infos) <= keep {
		return 0, nil
	}

	var errs []error
	removed := 0
	for _, info := range infos[keep:] {
		if err := m.store.Delete(ctx, info.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete snapshot %s: %w", info.ID, err))
			continue
		}
		removed++
		logger.FromContext(ctx).Debug("snapshot pruned", "id", info.ID, "created_at", info.CreatedAt)
	}
	return removed, errors.Join(errs...)
}
