package dns

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lite-lake/peerdns/internal/domain/contract"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

// DryRunStore reads through to the wrapped store and only logs writes.
type DryRunStore struct {
	inner contract.RecordStore

	mu    sync.Mutex
	calls []Call
}

func NewDryRunStore(inner contract.RecordStore) *DryRunStore {
	return &DryRunStore{inner: inner}
}

func (d *DryRunStore) Name() string {
	return d.inner.Name() + " (dry-run)"
}

// Skipped returns the writes that would have been sent.
func (d *DryRunStore) Skipped() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

func (d *DryRunStore) ListRecords(ctx context.Context, zone string, filter entity.RecordFilter) ([]entity.DNSRecord, error) {
	return d.inner.ListRecords(ctx, zone, filter)
}

func (d *DryRunStore) CreateRecord(_ context.Context, zone string, record entity.DNSRecord) (entity.DNSRecord, error) {
	d.skip(Call{Op: CallCreate, Zone: zone, Record: record})
	record.ID = "dry-run-" + uuid.NewString()[:8]
	return record, nil
}

func (d *DryRunStore) UpdateRecord(_ context.Context, zone, recordID string, record entity.DNSRecord) (entity.DNSRecord, error) {
	d.skip(Call{Op: CallUpdate, Zone: zone, RecordID: recordID, Record: record})
	record.ID = recordID
	return record, nil
}

func (d *DryRunStore) DeleteRecord(_ context.Context, zone, recordID string) error {
	d.skip(Call{Op: CallDelete, Zone: zone, RecordID: recordID})
	return nil
}

func (d *DryRunStore) skip(call Call) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
	logger.Info("dry-run: skipping write", "op", call.Op, "zone", call.Zone, "record_id", call.RecordID, "record", call.Record.String())
}
