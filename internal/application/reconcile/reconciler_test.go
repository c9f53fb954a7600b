package reconcile

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/service"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	dnsprovider "github.com/lite-lake/peerdns/internal/providers/dns"
)

const zone = "example.com"

// quietContext carries a discarding logger so test output stays readable.
func quietContext() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.Nop())
}

var layout = service.Layout{RecordName: "_mesh._tcp.example.com", Domain: "example.com", Prefix: "peer"}

func ranked(hosts ...string) []entity.ProbeResult {
	out := make([]entity.ProbeResult, 0, len(hosts))
	for i, h := range hosts {
		out = append(out, entity.ProbeResult{
			Peer:    entity.Peer{Host: h, Port: 7000 + i},
			Latency: float64(i + 1),
			Success: true,
		})
	}
	return out
}

func buildPlan(t *testing.T, strategy entity.Strategy, hosts ...string) *valueobject.RecordPlan {
	t.Helper()
	planner := service.NewPlannerService(service.PlannerConfig{
		Layout:        layout,
		Strategy:      strategy,
		TTL:           300,
		Weight:        10,
		PriorityStart: 10,
		PriorityStep:  10,
	})
	plan, err := planner.Plan(ranked(hosts...))
	require.NoError(t, err)
	return plan
}

func newReconciler(store *dnsprovider.MemoryStore, strategy entity.Strategy) *Reconciler {
	return NewReconciler(store, Config{Zone: zone, Layout: layout, Strategy: strategy}, nil)
}

func run(t *testing.T, r *Reconciler, plan *valueobject.RecordPlan) *Summary {
	t.Helper()
	ctx := quietContext()
	state, err := r.Fetch(ctx)
	require.NoError(t, err)
	return r.Apply(ctx, plan, state)
}

// contents renders the zone as sorted "TYPE name value" strings, ignoring IDs.
func contents(store *dnsprovider.MemoryStore) []string {
	var out []string
	for _, r := range store.Records(zone) {
		out = append(out, r.String())
	}
	sort.Strings(out)
	return out
}

func TestApply_FreshZoneSRV(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "a.example.net", "203.0.113.5"))

	assert.Equal(t, 3, sum.Created)
	assert.Zero(t, sum.Failed)
	assert.Equal(t, []string{
		"A peer_20.example.com 203.0.113.5",
		"SRV _mesh._tcp.example.com 10 10 7000 a.example.net",
		"SRV _mesh._tcp.example.com 20 10 7001 peer_20.example.com",
	}, contents(store))
}

func TestApply_Idempotent(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	r := newReconciler(store, entity.StrategySRV)
	plan := buildPlan(t, entity.StrategySRV, "a.example.net", "203.0.113.5")

	run(t, r, plan)
	first := contents(store)

	sum := run(t, r, plan)
	assert.Equal(t, first, contents(store))
	assert.Equal(t, 1, sum.Unchanged, "alias reused")
	assert.Equal(t, 2, sum.Deleted)
	assert.Equal(t, 2, sum.Created)
	assert.Zero(t, sum.Updated)
	assert.Zero(t, sum.Failed)
}

func TestApply_AliasUpdatedInPlace(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.Seed(zone, entity.DNSRecord{ID: "alias-1", Type: entity.DNSRecordTypeA, Name: "peer_10.example.com", Value: "198.51.100.1", TTL: 300})
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "203.0.113.5"))

	assert.Equal(t, 1, sum.Updated)
	assert.Equal(t, 1, sum.Created)
	assert.Zero(t, sum.Deleted)

	var alias entity.DNSRecord
	for _, rec := range store.Records(zone) {
		if rec.Type == entity.DNSRecordTypeA {
			alias = rec
		}
	}
	assert.Equal(t, "alias-1", alias.ID)
	assert.Equal(t, "203.0.113.5", alias.Value)
}

func TestApply_OrphanAliasesRemoved(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.Seed(zone,
		entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "peer_30.example.com", Value: "198.51.100.3"},
		entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "www.example.com", Value: "198.51.100.9"},
		entity.DNSRecord{Type: entity.DNSRecordTypeSRV, Name: "_other._tcp.example.com", Value: "10 10 1 x.example.net"},
	)
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "a.example.net"))

	assert.Equal(t, 1, sum.Deleted)
	assert.Equal(t, []string{
		"A www.example.com 198.51.100.9",
		"SRV _mesh._tcp.example.com 10 10 7000 a.example.net",
		"SRV _other._tcp.example.com 10 10 1 x.example.net",
	}, contents(store))
}

func TestApply_DuplicateAliasKeepsOne(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.Seed(zone,
		entity.DNSRecord{ID: "keep", Type: entity.DNSRecordTypeA, Name: "peer_10.example.com", Value: "203.0.113.5"},
		entity.DNSRecord{ID: "dup", Type: entity.DNSRecordTypeA, Name: "peer_10.example.com", Value: "203.0.113.5"},
	)
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "203.0.113.5"))

	assert.Equal(t, 1, sum.Unchanged)
	assert.Equal(t, 1, sum.Deleted)
	ids := []string{}
	for _, rec := range store.Records(zone) {
		if rec.Type == entity.DNSRecordTypeA {
			ids = append(ids, rec.ID)
		}
	}
	assert.Equal(t, []string{"keep"}, ids)
}

func TestApply_FailuresDoNotAbort(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.FailOn(dnsprovider.FailureRule{
		Op:    dnsprovider.CallCreate,
		Match: func(c dnsprovider.Call) bool { return c.Record.Value == "10 10 7000 a.example.net" },
		Err:   errors.New("quota exceeded"),
	})
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "a.example.net", "b.example.net", "c.example.net"))

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.Created)
	assert.True(t, sum.HasFailures())

	var failed []*valueobject.Change
	for _, ch := range sum.Changes {
		if ch.Failed() {
			failed = append(failed, ch)
		}
	}
	require.Len(t, failed, 1)
	assert.True(t, domain.IsRejectedError(failed[0].Err()))
}

func TestApply_AliasFailureSkipsSRV(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.FailOn(dnsprovider.FailureRule{
		Op:    dnsprovider.CallCreate,
		Match: func(c dnsprovider.Call) bool { return c.Record.Type == entity.DNSRecordTypeA },
		Err:   errors.New("invalid record"),
	})
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "203.0.113.5", "a.example.net"))

	assert.Equal(t, 2, sum.Failed, "alias create and dependent SRV")
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, []string{"SRV _mesh._tcp.example.com 20 10 7001 a.example.net"}, contents(store))
}

func TestApply_DeleteFailureCounted(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.Seed(zone, entity.DNSRecord{ID: "old", Type: entity.DNSRecordTypeSRV, Name: "_mesh._tcp.example.com", Value: "10 10 1 old.example.net"})
	store.FailOn(dnsprovider.FailureRule{Op: dnsprovider.CallDelete, Err: errors.New("locked")})
	r := newReconciler(store, entity.StrategySRV)

	sum := run(t, r, buildPlan(t, entity.StrategySRV, "a.example.net"))

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Created)
}

func TestApply_TXT(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.Seed(zone,
		entity.DNSRecord{Type: entity.DNSRecordTypeTXT, Name: "peer-1.example.com", Value: "tcp://old1:1"},
		entity.DNSRecord{Type: entity.DNSRecordTypeTXT, Name: "peer-2.example.com", Value: "tcp://old2:1"},
		entity.DNSRecord{Type: entity.DNSRecordTypeTXT, Name: "peer-3.example.com", Value: "tcp://old3:1"},
		entity.DNSRecord{Type: entity.DNSRecordTypeTXT, Name: "example.com", Value: "v=spf1 -all"},
		entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "peer_10.example.com", Value: "198.51.100.1"},
	)
	r := newReconciler(store, entity.StrategyTXT)

	sum := run(t, r, buildPlan(t, entity.StrategyTXT, "a.example.net", "203.0.113.5"))

	assert.Equal(t, 3, sum.Deleted)
	assert.Equal(t, 2, sum.Created)
	assert.Equal(t, []string{
		"A peer_10.example.com 198.51.100.1",
		"TXT example.com v=spf1 -all",
		"TXT peer-1.example.com tcp://a.example.net:7000",
		"TXT peer-2.example.com tcp://203.0.113.5:7001",
	}, contents(store))
}

func TestFetch_ListFailureIsFatal(t *testing.T) {
	store := dnsprovider.NewMemoryStore()
	store.FailOn(dnsprovider.FailureRule{Op: dnsprovider.CallList, Err: errors.New("unauthorized")})
	r := newReconciler(store, entity.StrategySRV)

	_, err := r.Fetch(quietContext())
	assert.True(t, errors.Is(err, domain.ErrStoreRead))
	assert.Empty(t, store.Mutations())
}

func TestFetch_EmptyZone(t *testing.T) {
	r := newReconciler(dnsprovider.NewMemoryStore(), entity.StrategySRV)

	state, err := r.Fetch(quietContext())
	require.NoError(t, err)
	assert.Empty(t, state.All())
}
