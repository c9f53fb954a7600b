package dns

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tcerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

const (
	tencentPageSize    = 3000
	tencentDefaultLine = "默认"
	tencentEmptyList   = "ResourceNotFound.NoDataOfRecord"
)

// tencentAPI is the part of the dnspod client the provider calls.
type tencentAPI interface {
	DescribeRecordListWithContext(ctx context.Context, request *dnspod.DescribeRecordListRequest) (*dnspod.DescribeRecordListResponse, error)
	CreateRecordWithContext(ctx context.Context, request *dnspod.CreateRecordRequest) (*dnspod.CreateRecordResponse, error)
	ModifyRecordWithContext(ctx context.Context, request *dnspod.ModifyRecordRequest) (*dnspod.ModifyRecordResponse, error)
	DeleteRecordWithContext(ctx context.Context, request *dnspod.DeleteRecordRequest) (*dnspod.DeleteRecordResponse, error)
}

type TencentProvider struct {
	client tencentAPI
	opts   Options
}

func NewTencentProvider(secretID, secretKey string, opts Options) (*TencentProvider, error) {
	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "dnspod.tencentcloudapi.com"
	client, err := dnspod.NewClient(credential, "", cpf)
	if err != nil {
		return nil, fmt.Errorf("create tencent dns client: %w", err)
	}
	return &TencentProvider{client: client, opts: opts}, nil
}

func (p *TencentProvider) Name() string {
	return "tencent"
}

func (p *TencentProvider) ListRecords(ctx context.Context, zone string, filter entity.RecordFilter) ([]entity.DNSRecord, error) {
	logger.Debug("listing DNS records", "provider", "tencent", "zone", zone, "filter", filter.String())

	var records []entity.DNSRecord
	for offset := uint64(0); ; {
		req := dnspod.NewDescribeRecordListRequest()
		req.Domain = common.StringPtr(zone)
		req.Offset = common.Uint64Ptr(offset)
		req.Limit = common.Uint64Ptr(tencentPageSize)
		if filter.Type != "" {
			req.RecordType = common.StringPtr(string(filter.Type))
		}

		resp, err := invoke(ctx, p.opts, "list records", tencentRejection, func() (*dnspod.DescribeRecordListResponse, error) {
			resp, err := p.client.DescribeRecordListWithContext(ctx, req)
			var sdkErr *tcerrors.TencentCloudSDKError
			if errors.As(err, &sdkErr) && sdkErr.GetCode() == tencentEmptyList {
				return nil, nil
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		if resp == nil || resp.Response == nil {
			break
		}

		batch := resp.Response.RecordList
		for _, r := range batch {
			records = append(records, fromTencent(r, zone))
		}
		next, more := tencentNextOffset(offset, len(batch), resp.Response.RecordCountInfo)
		if !more {
			break
		}
		offset = next
	}

	matched := filterRecords(records, filter)
	logger.Debug("listed DNS records", "provider", "tencent", "zone", zone, "count", len(matched))
	return matched, nil
}

func (p *TencentProvider) CreateRecord(ctx context.Context, zone string, record entity.DNSRecord) (entity.DNSRecord, error) {
	logger.Debug("creating DNS record", "provider", "tencent", "zone", zone, "name", record.Name, "type", record.Type)

	req := dnspod.NewCreateRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.SubDomain = common.StringPtr(GetSubDomain(record.Name, zone))
	req.RecordType = common.StringPtr(string(record.Type))
	req.RecordLine = common.StringPtr(tencentDefaultLine)
	req.Value = common.StringPtr(record.Value)
	req.TTL = common.Uint64Ptr(tencentTTL(record.TTL))

	return invoke(ctx, p.opts, "create record", tencentRejection, func() (entity.DNSRecord, error) {
		resp, err := p.client.CreateRecordWithContext(ctx, req)
		if err != nil {
			return entity.DNSRecord{}, err
		}
		created := record
		if resp.Response != nil && resp.Response.RecordId != nil {
			created.ID = strconv.FormatUint(*resp.Response.RecordId, 10)
		}
		return created, nil
	})
}

func (p *TencentProvider) UpdateRecord(ctx context.Context, zone, recordID string, record entity.DNSRecord) (entity.DNSRecord, error) {
	logger.Debug("updating DNS record", "provider", "tencent", "zone", zone, "record_id", recordID, "name", record.Name)

	id, err := parseTencentID("update record", recordID)
	if err != nil {
		return entity.DNSRecord{}, err
	}

	req := dnspod.NewModifyRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.RecordId = common.Uint64Ptr(id)
	req.SubDomain = common.StringPtr(GetSubDomain(record.Name, zone))
	req.RecordType = common.StringPtr(string(record.Type))
	req.RecordLine = common.StringPtr(tencentDefaultLine)
	req.Value = common.StringPtr(record.Value)
	req.TTL = common.Uint64Ptr(tencentTTL(record.TTL))

	return invoke(ctx, p.opts, "update record", tencentRejection, func() (entity.DNSRecord, error) {
		if _, err := p.client.ModifyRecordWithContext(ctx, req); err != nil {
			return entity.DNSRecord{}, err
		}
		updated := record
		updated.ID = recordID
		return updated, nil
	})
}

func (p *TencentProvider) DeleteRecord(ctx context.Context, zone, recordID string) error {
	logger.Debug("deleting DNS record", "provider", "tencent", "zone", zone, "record_id", recordID)

	id, err := parseTencentID("delete record", recordID)
	if err != nil {
		return err
	}

	req := dnspod.NewDeleteRecordRequest()
	req.Domain = common.StringPtr(zone)
	req.RecordId = common.Uint64Ptr(id)

	_, err = invoke(ctx, p.opts, "delete record", tencentRejection, func() (struct{}, error) {
		_, err := p.client.DeleteRecordWithContext(ctx, req)
		return struct{}{}, err
	})
	return err
}

func fromTencent(r *dnspod.RecordListItem, zone string) entity.DNSRecord {
	rec := entity.DNSRecord{
		Name:  entity.NormalizeName(GetFullDomain(stringValue(r.Name), zone)),
		Type:  entity.DNSRecordType(stringValue(r.Type)),
		Value: stringValue(r.Value),
		TTL:   600,
	}
	if rec.Type == entity.DNSRecordTypeSRV {
		rec.Value = strings.TrimSuffix(rec.Value, ".")
	}
	if r.RecordId != nil {
		rec.ID = strconv.FormatUint(*r.RecordId, 10)
	}
	if r.TTL != nil {
		rec.TTL = int(*r.TTL)
	}
	return rec
}

// tencentNextOffset advances past batch and reports whether the listing
// has records left. A missing count is treated as the end.
func tencentNextOffset(offset uint64, batch int, info *dnspod.RecordCountInfo) (uint64, bool) {
	next := offset + uint64(batch)
	if batch == 0 || info == nil || info.TotalCount == nil {
		return next, false
	}
	return next, next < *info.TotalCount
}

func parseTencentID(op, recordID string) (uint64, error) {
	id, err := strconv.ParseUint(recordID, 10, 64)
	if err != nil {
		return 0, domain.NewRejectedError(op, fmt.Sprintf("invalid record ID %q", recordID), err)
	}
	return id, nil
}

func tencentTTL(ttl int) uint64 {
	if ttl <= 0 {
		return 600
	}
	return uint64(ttl)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func tencentRejection(err error) (string, bool, bool) {
	var sdkErr *tcerrors.TencentCloudSDKError
	if !errors.As(err, &sdkErr) {
		return "", false, false
	}
	code := sdkErr.GetCode()
	transport := strings.HasPrefix(code, "RequestLimitExceeded") || code == "InternalError" || strings.HasPrefix(code, "ClientError.NetworkError")
	return code + ": " + sdkErr.GetMessage(), transport, true
}
