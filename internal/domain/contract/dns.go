package contract

import (
	"context"

	"github.com/lite-lake/peerdns/internal/domain/entity"
)

// RecordStore is the DNS provider capability the reconciler depends on.
// ListRecords returns the union of all result pages. Every failure is a *domain.StoreError.
type RecordStore interface {
	Name() string
	ListRecords(ctx context.Context, zone string, filter entity.RecordFilter) ([]entity.DNSRecord, error)
	CreateRecord(ctx context.Context, zone string, record entity.DNSRecord) (entity.DNSRecord, error)
	UpdateRecord(ctx context.Context, zone, recordID string, record entity.DNSRecord) (entity.DNSRecord, error)
	DeleteRecord(ctx context.Context, zone, recordID string) error
}
