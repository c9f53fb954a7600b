package dns

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

const aliyunPageSize = 500

// aliyunAPI is the part of the alidns client the provider calls.
type aliyunAPI interface {
	DescribeDomainRecords(request *alidns.DescribeDomainRecordsRequest) (*alidns.DescribeDomainRecordsResponse, error)
	AddDomainRecord(request *alidns.AddDomainRecordRequest) (*alidns.AddDomainRecordResponse, error)
	UpdateDomainRecord(request *alidns.UpdateDomainRecordRequest) (*alidns.UpdateDomainRecordResponse, error)
	DeleteDomainRecord(request *alidns.DeleteDomainRecordRequest) (*alidns.DeleteDomainRecordResponse, error)
}

type AliyunProvider struct {
	client aliyunAPI
	opts   Options
}

func NewAliyunProvider(accessKeyID, accessKeySecret string, opts Options) (*AliyunProvider, error) {
	config := &openapi.Config{
		AccessKeyId:     tea.String(accessKeyID),
		AccessKeySecret: tea.String(accessKeySecret),
	}
	config.Endpoint = tea.String("dns.aliyuncs.com")
	client, err := alidns.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("create aliyun dns client: %w", err)
	}
	return &AliyunProvider{client: client, opts: opts}, nil
}

func (p *AliyunProvider) Name() string {
	return "aliyun"
}

func (p *AliyunProvider) ListRecords(ctx context.Context, zone string, filter entity.RecordFilter) ([]entity.DNSRecord, error) {
	logger.Debug("listing DNS records", "provider", "aliyun", "zone", zone, "filter", filter.String())

	var records []entity.DNSRecord
	for page := int64(1); ; page++ {
		req := &alidns.DescribeDomainRecordsRequest{
			DomainName: tea.String(zone),
			PageNumber: tea.Int64(page),
			PageSize:   tea.Int64(aliyunPageSize),
		}
		if filter.Type != "" {
			req.Type = tea.String(string(filter.Type))
		}

		resp, err := invoke(ctx, p.opts, "list records", aliyunRejection, func() (*alidns.DescribeDomainRecordsResponse, error) {
			return p.client.DescribeDomainRecords(req)
		})
		if err != nil {
			return nil, err
		}
		if resp.Body == nil || resp.Body.DomainRecords == nil {
			break
		}

		batch := resp.Body.DomainRecords.Record
		for _, r := range batch {
			records = append(records, fromAliyun(r, zone))
		}
		if !aliyunHasMore(page, len(batch), tea.Int64Value(resp.Body.TotalCount)) {
			break
		}
	}

	matched := filterRecords(records, filter)
	logger.Debug("listed DNS records", "provider", "aliyun", "zone", zone, "count", len(matched))
	return matched, nil
}

func (p *AliyunProvider) CreateRecord(ctx context.Context, zone string, record entity.DNSRecord) (entity.DNSRecord, error) {
	logger.Debug("creating DNS record", "provider", "aliyun", "zone", zone, "name", record.Name, "type", record.Type)

	req := &alidns.AddDomainRecordRequest{
		DomainName: tea.String(zone),
		RR:         tea.String(GetSubDomain(record.Name, zone)),
		Type:       tea.String(string(record.Type)),
		Value:      tea.String(record.Value),
		TTL:        tea.Int64(aliyunTTL(record.TTL)),
	}

	return invoke(ctx, p.opts, "create record", aliyunRejection, func() (entity.DNSRecord, error) {
		resp, err := p.client.AddDomainRecord(req)
		if err != nil {
			return entity.DNSRecord{}, err
		}
		created := record
		if resp.Body != nil {
			created.ID = tea.StringValue(resp.Body.RecordId)
		}
		return created, nil
	})
}

func (p *AliyunProvider) UpdateRecord(ctx context.Context, zone, recordID string, record entity.DNSRecord) (entity.DNSRecord, error) {
	logger.Debug("updating DNS record", "provider", "aliyun", "zone", zone, "record_id", recordID, "name", record.Name)

	req := &alidns.UpdateDomainRecordRequest{
		RecordId: tea.String(recordID),
		RR:       tea.String(GetSubDomain(record.Name, zone)),
		Type:     tea.String(string(record.Type)),
		Value:    tea.String(record.Value),
		TTL:      tea.Int64(aliyunTTL(record.TTL)),
	}

	return invoke(ctx, p.opts, "update record", aliyunRejection, func() (entity.DNSRecord, error) {
		if _, err := p.client.UpdateDomainRecord(req); err != nil {
			return entity.DNSRecord{}, err
		}
		updated := record
		updated.ID = recordID
		return updated, nil
	})
}

func (p *AliyunProvider) DeleteRecord(ctx context.Context, zone, recordID string) error {
	logger.Debug("deleting DNS record", "provider", "aliyun", "zone", zone, "record_id", recordID)

	req := &alidns.DeleteDomainRecordRequest{
		RecordId: tea.String(recordID),
	}
	_, err := invoke(ctx, p.opts, "delete record", aliyunRejection, func() (struct{}, error) {
		_, err := p.client.DeleteDomainRecord(req)
		return struct{}{}, err
	})
	return err
}

func fromAliyun(r *alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord, zone string) entity.DNSRecord {
	ttl := 600
	if r.TTL != nil {
		ttl = int(*r.TTL)
	}
	return entity.DNSRecord{
		ID:    tea.StringValue(r.RecordId),
		Name:  entity.NormalizeName(GetFullDomain(tea.StringValue(r.RR), zone)),
		Type:  entity.DNSRecordType(tea.StringValue(r.Type)),
		Value: tea.StringValue(r.Value),
		TTL:   ttl,
	}
}

// aliyunHasMore reports whether another page follows page, given the size
// of the batch it returned and the total the API reported.
func aliyunHasMore(page int64, batch int, total int64) bool {
	return batch > 0 && page*aliyunPageSize < total
}

func aliyunTTL(ttl int) int64 {
	if ttl <= 0 {
		return 600
	}
	return int64(ttl)
}

func aliyunRejection(err error) (string, bool, bool) {
	var sdkErr *tea.SDKError
	if !errors.As(err, &sdkErr) {
		return "", false, false
	}
	status := tea.IntValue(sdkErr.StatusCode)
	transport := status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	reason := tea.StringValue(sdkErr.Message)
	if code := tea.StringValue(sdkErr.Code); code != "" {
		reason = code + ": " + reason
	}
	return reason, transport, true
}
