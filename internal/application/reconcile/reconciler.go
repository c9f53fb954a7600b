package reconcile

import (
	"context"
	"fmt"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/contract"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/service"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
)

// ZoneState is what Fetch found in the zone before any mutation.
type ZoneState struct {
	// Managed holds records of the managed type (SRV or TXT).
	Managed []entity.DNSRecord
	// Aliases holds prefixed A records. Always empty for TXT.
	Aliases []entity.DNSRecord
}

func (s *ZoneState) All() []entity.DNSRecord {
	return append(append([]entity.DNSRecord{}, s.Managed...), s.Aliases...)
}

type Summary struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Failed    int
	Changes   []*valueobject.Change
}

func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) Mutations() int {
	return s.Created + s.Updated + s.Deleted
}

func (s *Summary) String() string {
	return fmt.Sprintf("created=%d updated=%d deleted=%d unchanged=%d failed=%d",
		s.Created, s.Updated, s.Deleted, s.Unchanged, s.Failed)
}

type Config struct {
	Zone     string
	Layout   service.Layout
	Strategy entity.Strategy
}

type Reconciler struct {
	store   contract.RecordStore
	cfg     Config
	metrics *metrics.Metrics
}

func NewReconciler(store contract.RecordStore, cfg Config, m *metrics.Metrics) *Reconciler {
	return &Reconciler{store: store, cfg: cfg, metrics: m}
}

// Fetch lists every record the run manages. Any listing failure is fatal.
func (r *Reconciler) Fetch(ctx context.Context) (*ZoneState, error) {
	managed, err := r.store.ListRecords(ctx, r.cfg.Zone, r.cfg.Layout.ManagedFilter(r.cfg.Strategy))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	state := &ZoneState{Managed: managed}
	if r.cfg.Strategy == entity.StrategySRV {
		aliases, err := r.store.ListRecords(ctx, r.cfg.Zone, r.cfg.Layout.AliasFilter())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
		}
		state.Aliases = aliases
	}

	logger.FromContext(ctx).Info("fetched zone state", "zone", r.cfg.Zone, "managed", len(state.Managed), "aliases", len(state.Aliases))
	return state, nil
}

// Apply drives the zone from state to plan. Individual failures are counted, never fatal.
func (r *Reconciler) Apply(ctx context.Context, plan *valueobject.RecordPlan, state *ZoneState) *Summary {
	sum := &Summary{}

	for _, rec := range state.Managed {
		r.delete(ctx, sum, rec)
	}

	ensured := make(map[string]bool)
	active := make(map[string]bool)
	if r.cfg.Strategy == entity.StrategySRV {
		for _, alias := range plan.Aliases() {
			if id, ok := r.ensureAlias(ctx, sum, alias, state.Aliases); ok {
				ensured[entity.NormalizeName(alias.Name)] = true
				active[id] = true
			}
		}
	}

	for _, entry := range plan.Entries() {
		if entry.Alias != nil && !ensured[entity.NormalizeName(entry.Alias.Name)] {
			err := fmt.Errorf("%w: alias %s was not ensured", domain.ErrStoreWrite, entry.Alias.Name)
			r.record(ctx, sum, valueobject.NewChange(valueobject.ChangeTypeCreate, nil, &entry.Record, err))
			continue
		}
		r.create(ctx, sum, entry.Record)
	}

	if r.cfg.Strategy == entity.StrategySRV {
		for _, rec := range state.Aliases {
			if !active[rec.ID] {
				r.delete(ctx, sum, rec)
			}
		}
	}

	logger.FromContext(ctx).Info("reconciliation finished", "zone", r.cfg.Zone, "summary", sum.String())
	return sum
}

// ensureAlias makes the A record exist with the planned content and returns its ID.
func (r *Reconciler) ensureAlias(ctx context.Context, sum *Summary, alias entity.DNSRecord, existing []entity.DNSRecord) (string, bool) {
	for _, cur := range existing {
		if entity.NormalizeName(cur.Name) != entity.NormalizeName(alias.Name) {
			continue
		}
		if cur.SameContent(alias) {
			sum.Unchanged++
			sum.Changes = append(sum.Changes, valueobject.NewChange(valueobject.ChangeTypeNoop, &cur, &cur, nil))
			return cur.ID, true
		}
		updated, err := r.store.UpdateRecord(ctx, r.cfg.Zone, cur.ID, alias)
		r.record(ctx, sum, valueobject.NewChange(valueobject.ChangeTypeUpdate, &cur, &alias, err))
		if err != nil {
			return "", false
		}
		if updated.ID == "" {
			updated.ID = cur.ID
		}
		return updated.ID, true
	}

	created, err := r.store.CreateRecord(ctx, r.cfg.Zone, alias)
	r.record(ctx, sum, valueobject.NewChange(valueobject.ChangeTypeCreate, nil, &alias, err))
	if err != nil {
		return "", false
	}
	return created.ID, true
}

func (r *Reconciler) create(ctx context.Context, sum *Summary, rec entity.DNSRecord) {
	_, err := r.store.CreateRecord(ctx, r.cfg.Zone, rec)
	r.record(ctx, sum, valueobject.NewChange(valueobject.ChangeTypeCreate, nil, &rec, err))
}

func (r *Reconciler) delete(ctx context.Context, sum *Summary, rec entity.DNSRecord) {
	err := r.store.DeleteRecord(ctx, r.cfg.Zone, rec.ID)
	r.record(ctx, sum, valueobject.NewChange(valueobject.ChangeTypeDelete, &rec, nil, err))
}

func (r *Reconciler) record(ctx context.Context, sum *Summary, ch *valueobject.Change) {
	sum.Changes = append(sum.Changes, ch)
	rec := ch.Record()
	op := ch.Type().String()
	r.metrics.ObserveMutation(op, string(rec.Type), ch.Err())

	log := logger.FromContext(ctx)
	if ch.Failed() {
		sum.Failed++
		log.Error("record mutation failed", "op", op, "type", rec.Type, "name", rec.Name, "value", rec.Value, "error", ch.Err())
		return
	}

	switch ch.Type() {
	case valueobject.ChangeTypeCreate:
		sum.Created++
	case valueobject.ChangeTypeUpdate:
		sum.Updated++
	case valueobject.ChangeTypeDelete:
		sum.Deleted++
	}
	log.Info("record mutated", "op", op, "type", rec.Type, "name", rec.Name, "value", rec.Value)
}
