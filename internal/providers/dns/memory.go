package dns

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

type CallOp string

const (
	CallList   CallOp = "list"
	CallCreate CallOp = "create"
	CallUpdate CallOp = "update"
	CallDelete CallOp = "delete"
)

// Call is one request seen by the memory store.
type Call struct {
	Op       CallOp
	Zone     string
	RecordID string
	Record   entity.DNSRecord
	Filter   entity.RecordFilter
}

func (c Call) IsMutation() bool {
	return c.Op != CallList
}

// FailureRule makes matching calls fail with Err.
type FailureRule struct {
	Op    CallOp
	Match func(Call) bool
	Err   error
}

// MemoryStore is an in-process record store keyed by zone.
type MemoryStore struct {
	mu       sync.Mutex
	zones    map[string][]entity.DNSRecord
	nextID   int
	calls    []Call
	failures []FailureRule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{zones: make(map[string][]entity.DNSRecord)}
}

func (m *MemoryStore) Name() string {
	return "memory"
}

// Seed adds records as if they already existed. Records without an ID get one.
func (m *MemoryStore) Seed(zone string, records ...entity.DNSRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			r.ID = m.newID()
		}
		m.zones[zone] = append(m.zones[zone], r)
	}
}

func (m *MemoryStore) FailOn(rule FailureRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, rule)
}

// Records returns a copy of the zone contents in insertion order.
func (m *MemoryStore) Records(zone string) []entity.DNSRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.DNSRecord(nil), m.zones[zone]...)
}

func (m *MemoryStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MemoryStore) Mutations() []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.IsMutation() {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemoryStore) ListRecords(ctx context.Context, zone string, filter entity.RecordFilter) ([]entity.DNSRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ctx, "list records", Call{Op: CallList, Zone: zone, Filter: filter}); err != nil {
		return nil, err
	}
	return filterRecords(m.zones[zone], filter), nil
}

func (m *MemoryStore) CreateRecord(ctx context.Context, zone string, record entity.DNSRecord) (entity.DNSRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ctx, "create record", Call{Op: CallCreate, Zone: zone, Record: record}); err != nil {
		return entity.DNSRecord{}, err
	}
	if err := record.Validate(); err != nil {
		return entity.DNSRecord{}, domain.NewRejectedError("create record", err.Error(), err)
	}
	record.ID = m.newID()
	record.Name = entity.NormalizeName(record.Name)
	m.zones[zone] = append(m.zones[zone], record)
	return record, nil
}

func (m *MemoryStore) UpdateRecord(ctx context.Context, zone, recordID string, record entity.DNSRecord) (entity.DNSRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ctx, "update record", Call{Op: CallUpdate, Zone: zone, RecordID: recordID, Record: record}); err != nil {
		return entity.DNSRecord{}, err
	}
	idx := m.indexOf(zone, recordID)
	if idx < 0 {
		return entity.DNSRecord{}, domain.NewRejectedError("update record", fmt.Sprintf("record %s not found", recordID), domain.ErrDNSRecordNotFound)
	}
	record.ID = recordID
	record.Name = entity.NormalizeName(record.Name)
	m.zones[zone][idx] = record
	return record, nil
}

func (m *MemoryStore) DeleteRecord(ctx context.Context, zone, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ctx, "delete record", Call{Op: CallDelete, Zone: zone, RecordID: recordID}); err != nil {
		return err
	}
	idx := m.indexOf(zone, recordID)
	if idx < 0 {
		return domain.NewRejectedError("delete record", fmt.Sprintf("record %s not found", recordID), domain.ErrDNSRecordNotFound)
	}
	records := m.zones[zone]
	m.zones[zone] = append(records[:idx:idx], records[idx+1:]...)
	return nil
}

// record logs the call and returns the first injected failure that applies.
func (m *MemoryStore) record(ctx context.Context, op string, call Call) error {
	if err := ctx.Err(); err != nil {
		return domain.NewTransportError(op, err)
	}
	m.calls = append(m.calls, call)
	for _, rule := range m.failures {
		if rule.Op != call.Op {
			continue
		}
		if rule.Match == nil || rule.Match(call) {
			return classify(op, rule.Err, nil)
		}
	}
	return nil
}

func (m *MemoryStore) indexOf(zone, recordID string) int {
	for i, r := range m.zones[zone] {
		if r.ID == recordID {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) newID() string {
	m.nextID++
	return "mem-" + strconv.Itoa(m.nextID)
}
