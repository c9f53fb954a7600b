package dns

import (
	"context"
	"errors"
	"testing"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

const zone = "example.com"

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	created, err := m.CreateRecord(ctx, zone, entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "Peer_10.example.com.", Value: "203.0.113.5", TTL: 300})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected created record to carry an ID")
	}
	if created.Name != "peer_10.example.com" {
		t.Errorf("expected normalized name, got %s", created.Name)
	}

	updated, err := m.UpdateRecord(ctx, zone, created.ID, entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "peer_10.example.com", Value: "203.0.113.6", TTL: 300})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("expected ID %s, got %s", created.ID, updated.ID)
	}

	got, err := m.ListRecords(ctx, zone, entity.RecordFilter{Type: entity.DNSRecordTypeA})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Value != "203.0.113.6" {
		t.Errorf("unexpected records %v", got)
	}

	if err := m.DeleteRecord(ctx, zone, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(m.Records(zone)) != 0 {
		t.Error("expected zone to be empty")
	}

	if err := m.DeleteRecord(ctx, zone, created.ID); !domain.IsRejectedError(err) {
		t.Errorf("expected rejected error for missing record, got %v", err)
	}
	if len(m.Mutations()) != 4 {
		t.Errorf("expected 4 mutations, got %d", len(m.Mutations()))
	}
}

func TestMemoryStore_FailOn(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.FailOn(FailureRule{
		Op:    CallCreate,
		Match: func(c Call) bool { return c.Record.Name == "bad.example.com" },
		Err:   errors.New("quota exceeded"),
	})

	if _, err := m.CreateRecord(ctx, zone, entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "bad.example.com", Value: "203.0.113.5"}); !domain.IsRejectedError(err) {
		t.Errorf("expected rejected error, got %v", err)
	}
	if _, err := m.CreateRecord(ctx, zone, entity.DNSRecord{Type: entity.DNSRecordTypeA, Name: "good.example.com", Value: "203.0.113.5"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	m.FailOn(FailureRule{Op: CallList, Err: timeoutErr{}})
	if _, err := m.ListRecords(ctx, zone, entity.RecordFilter{}); !domain.IsTransportError(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestDryRunStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	inner.Seed(zone, entity.DNSRecord{Type: entity.DNSRecordTypeTXT, Name: "peer-1.example.com", Value: "tcp://a:1"})

	d := NewDryRunStore(inner)

	got, err := d.ListRecords(ctx, zone, entity.RecordFilter{Type: entity.DNSRecordTypeTXT})
	if err != nil || len(got) != 1 {
		t.Fatalf("expected read-through, got %v, %v", got, err)
	}

	created, err := d.CreateRecord(ctx, zone, entity.DNSRecord{Type: entity.DNSRecordTypeTXT, Name: "peer-2.example.com", Value: "tcp://b:1"})
	if err != nil || created.ID == "" {
		t.Fatalf("expected synthetic create, got %v, %v", created, err)
	}
	if err := d.DeleteRecord(ctx, zone, got[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(inner.Mutations()) != 0 {
		t.Errorf("dry-run must not reach the store, got %v", inner.Mutations())
	}
	if len(d.Skipped()) != 2 {
		t.Errorf("expected 2 skipped writes, got %d", len(d.Skipped()))
	}
}

func TestFactory_Create(t *testing.T) {
	env := map[string]string{"CF_TOKEN": "token"}
	factory := NewFactory().WithLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	tests := []struct {
		name     string
		provider string
		creds    Credentials
		wantErr  error
	}{
		{name: "unsupported provider", provider: "route53", wantErr: domain.ErrUnsupportedProvider},
		{name: "missing api_token", provider: "cloudflare", creds: Credentials{}, wantErr: domain.ErrMissingCredential},
		{
			name:     "unset env credential",
			provider: "cloudflare",
			creds:    Credentials{"api_token": {Env: "NOT_SET"}},
			wantErr:  domain.ErrMissingSecret,
		},
		{
			name:     "missing access_key_secret for aliyun",
			provider: "aliyun",
			creds:    Credentials{"access_key_id": {Plain: "id"}},
			wantErr:  domain.ErrMissingCredential,
		},
		{
			name:     "missing secret_key for tencent",
			provider: "tencent",
			creds:    Credentials{"secret_id": {Plain: "id"}},
			wantErr:  domain.ErrMissingCredential,
		},
		{name: "cloudflare from env", provider: "cloudflare", creds: Credentials{"api_token": {Env: "CF_TOKEN"}}},
		{name: "memory", provider: "memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := factory.Create(tt.provider, tt.creds, DefaultOptions())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.Name() != tt.provider {
				t.Errorf("expected %s store, got %s", tt.provider, store.Name())
			}
		})
	}
}

func TestFactory_Providers(t *testing.T) {
	got := NewFactory().Providers()
	want := []string{"aliyun", "cloudflare", "memory", "tencent"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
