package dns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cloudflare/cloudflare-go/v2"
	"github.com/cloudflare/cloudflare-go/v2/dns"
	"github.com/cloudflare/cloudflare-go/v2/option"
	"github.com/cloudflare/cloudflare-go/v2/zones"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

var zoneIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

type CloudflareProvider struct {
	client *cloudflare.Client
	opts   Options

	mu      sync.Mutex
	zoneIDs map[string]string
}

// NewCloudflareProvider builds a provider on the v4 API. Extra request
// options are applied after the token, e.g. option.WithBaseURL.
func NewCloudflareProvider(apiToken string, opts Options, extra ...option.RequestOption) *CloudflareProvider {
	client := cloudflare.NewClient(
		append([]option.RequestOption{option.WithAPIToken(apiToken)}, extra...)...,
	)
	return &CloudflareProvider{client: client, opts: opts, zoneIDs: make(map[string]string)}
}

func (p *CloudflareProvider) Name() string {
	return "cloudflare"
}

// zoneID accepts either a zone ID or a zone name.
func (p *CloudflareProvider) zoneID(ctx context.Context, zone string) (string, error) {
	if zoneIDPattern.MatchString(zone) {
		return zone, nil
	}

	p.mu.Lock()
	id, ok := p.zoneIDs[zone]
	p.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := invoke(ctx, p.opts, "list zones", cloudflareRejection, func() (string, error) {
		resp, err := p.client.Zones.List(ctx, zones.ZoneListParams{
			Name: cloudflare.F(zone),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Result) == 0 {
			return "", domain.NewRejectedError("list zones", fmt.Sprintf("zone %s not found", zone), domain.ErrDNSZoneNotFound)
		}
		return resp.Result[0].ID, nil
	})
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.zoneIDs[zone] = id
	p.mu.Unlock()
	return id, nil
}

func (p *CloudflareProvider) ListRecords(ctx context.Context, zone string, filter entity.RecordFilter) ([]entity.DNSRecord, error) {
	logger.Debug("listing DNS records", "provider", "cloudflare", "zone", zone, "filter", filter.String())

	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return nil, err
	}

	records, err := invoke(ctx, p.opts, "list records", cloudflareRejection, func() ([]entity.DNSRecord, error) {
		params := dns.RecordListParams{
			ZoneID: cloudflare.F(zoneID),
		}
		if filter.Type != "" {
			params.Type = cloudflare.F(dns.RecordListParamsType(filter.Type))
		}

		var out []entity.DNSRecord
		pager := p.client.DNS.Records.ListAutoPaging(ctx, params)
		for pager.Next() {
			out = append(out, fromCloudflare(pager.Current()))
		}
		if err := pager.Err(); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	matched := filterRecords(records, filter)
	logger.Debug("listed DNS records", "provider", "cloudflare", "zone", zone, "count", len(matched))
	return matched, nil
}

func (p *CloudflareProvider) CreateRecord(ctx context.Context, zone string, record entity.DNSRecord) (entity.DNSRecord, error) {
	logger.Debug("creating DNS record", "provider", "cloudflare", "zone", zone, "name", record.Name, "type", record.Type)

	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return entity.DNSRecord{}, err
	}
	param, err := buildCloudflareParam(record)
	if err != nil {
		return entity.DNSRecord{}, domain.NewRejectedError("create record", err.Error(), err)
	}

	return invoke(ctx, p.opts, "create record", cloudflareRejection, func() (entity.DNSRecord, error) {
		res, err := p.client.DNS.Records.New(ctx, dns.RecordNewParams{
			ZoneID: cloudflare.F(zoneID),
			Record: param,
		})
		if err != nil {
			return entity.DNSRecord{}, err
		}
		created := record
		created.ID = res.ID
		return created, nil
	})
}

func (p *CloudflareProvider) UpdateRecord(ctx context.Context, zone, recordID string, record entity.DNSRecord) (entity.DNSRecord, error) {
	logger.Debug("updating DNS record", "provider", "cloudflare", "zone", zone, "record_id", recordID, "name", record.Name)

	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return entity.DNSRecord{}, err
	}
	param, err := buildCloudflareParam(record)
	if err != nil {
		return entity.DNSRecord{}, domain.NewRejectedError("update record", err.Error(), err)
	}

	return invoke(ctx, p.opts, "update record", cloudflareRejection, func() (entity.DNSRecord, error) {
		_, err := p.client.DNS.Records.Edit(ctx, recordID, dns.RecordEditParams{
			ZoneID: cloudflare.F(zoneID),
			Record: param,
		})
		if err != nil {
			return entity.DNSRecord{}, err
		}
		updated := record
		updated.ID = recordID
		return updated, nil
	})
}

func (p *CloudflareProvider) DeleteRecord(ctx context.Context, zone, recordID string) error {
	logger.Debug("deleting DNS record", "provider", "cloudflare", "zone", zone, "record_id", recordID)

	zoneID, err := p.zoneID(ctx, zone)
	if err != nil {
		return err
	}

	_, err = invoke(ctx, p.opts, "delete record", cloudflareRejection, func() (struct{}, error) {
		_, err := p.client.DNS.Records.Delete(ctx, recordID, dns.RecordDeleteParams{
			ZoneID: cloudflare.F(zoneID),
		})
		return struct{}{}, err
	})
	return err
}

func fromCloudflare(record dns.Record) entity.DNSRecord {
	content := ""
	if str, ok := record.Content.(string); ok {
		content = str
	}

	rec := entity.DNSRecord{
		ID:    record.ID,
		Name:  entity.NormalizeName(record.Name),
		Type:  entity.DNSRecordType(record.Type),
		Value: content,
		TTL:   int(record.TTL),
	}
	switch rec.Type {
	case entity.DNSRecordTypeTXT:
		rec.Value = unquoteTXT(content)
	case entity.DNSRecordTypeSRV:
		// Cloudflare reports "weight port target" with the priority held separately.
		if fields := strings.Fields(content); len(fields) == 3 {
			rec.Value = strconv.Itoa(int(record.Priority)) + " " + content
		}
		rec.Value = strings.TrimSuffix(rec.Value, ".")
	}
	return rec
}

func buildCloudflareParam(record entity.DNSRecord) (dns.RecordUnionParam, error) {
	ttl := record.TTL
	if ttl == 0 {
		ttl = 1
	}

	switch record.Type {
	case entity.DNSRecordTypeA:
		return dns.ARecordParam{
			Name:    cloudflare.F(record.Name),
			Type:    cloudflare.F(dns.ARecordTypeA),
			Content: cloudflare.F(record.Value),
			TTL:     cloudflare.F(dns.TTL(ttl)),
		}, nil
	case entity.DNSRecordTypeTXT:
		return dns.TXTRecordParam{
			Name:    cloudflare.F(record.Name),
			Type:    cloudflare.F(dns.TXTRecordTypeTXT),
			Content: cloudflare.F(record.Value),
			TTL:     cloudflare.F(dns.TTL(ttl)),
		}, nil
	case entity.DNSRecordTypeSRV:
		data, err := entity.ParseSRVData(record.Value)
		if err != nil {
			return nil, err
		}
		return dns.SRVRecordParam{
			Name: cloudflare.F(record.Name),
			Type: cloudflare.F(dns.SRVRecordTypeSRV),
			Data: cloudflare.F(dns.SRVRecordDataParam{
				Priority: cloudflare.F(float64(data.Priority)),
				Weight:   cloudflare.F(float64(data.Weight)),
				Port:     cloudflare.F(float64(data.Port)),
				Target:   cloudflare.F(data.Target),
			}),
			TTL: cloudflare.F(dns.TTL(ttl)),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedRecordType, record.Type)
	}
}

func cloudflareRejection(err error) (string, bool, bool) {
	var apiErr *cloudflare.Error
	if !errors.As(err, &apiErr) {
		return "", false, false
	}
	transport := apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	return apiErr.Error(), transport, true
}
