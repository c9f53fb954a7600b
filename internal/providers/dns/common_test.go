package dns

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/alibabacloud-go/tea/tea"
	tcerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

func TestGetSubDomain(t *testing.T) {
	tests := []struct {
		full   string
		domain string
		want   string
	}{
		{"example.com", "example.com", "@"},
		{"peer_10.example.com", "example.com", "peer_10"},
		{"_mesh._tcp.example.com.", "example.com", "_mesh._tcp"},
		{"PEER-1.Example.com", "example.com", "PEER-1"},
		{"other.org", "example.com", "other.org"},
		{"notexample.com", "example.com", "notexample.com"},
	}

	for _, tt := range tests {
		t.Run(tt.full, func(t *testing.T) {
			if got := GetSubDomain(tt.full, tt.domain); got != tt.want {
				t.Errorf("GetSubDomain(%q, %q) = %q, want %q", tt.full, tt.domain, got, tt.want)
			}
		})
	}
}

func TestGetFullDomain(t *testing.T) {
	if got := GetFullDomain("@", "example.com"); got != "example.com" {
		t.Errorf("expected apex, got %s", got)
	}
	if got := GetFullDomain("", "example.com"); got != "example.com" {
		t.Errorf("expected apex, got %s", got)
	}
	if got := GetFullDomain("peer-1", "example.com"); got != "peer-1.example.com" {
		t.Errorf("expected peer-1.example.com, got %s", got)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		rejection rejectionFunc
		transport bool
		reason    string
	}{
		{name: "net error", err: timeoutErr{}, transport: true},
		{name: "deadline", err: context.DeadlineExceeded, transport: true},
		{name: "plain error", err: errors.New("bad record"), reason: "bad record"},
		{
			name:      "aliyun rejection",
			err:       tea.NewSDKError(map[string]interface{}{"code": "DomainRecordDuplicate", "message": "record exists", "statusCode": 400}),
			rejection: aliyunRejection,
			reason:    "DomainRecordDuplicate: record exists",
		},
		{
			name:      "aliyun throttled",
			err:       tea.NewSDKError(map[string]interface{}{"code": "Throttling", "message": "slow down", "statusCode": 429}),
			rejection: aliyunRejection,
			transport: true,
		},
		{
			name:      "tencent rejection",
			err:       tcerrors.NewTencentCloudSDKError("InvalidParameter.SubDomainInvalid", "bad subdomain", "req-1"),
			rejection: tencentRejection,
			reason:    "InvalidParameter.SubDomainInvalid: bad subdomain",
		},
		{
			name:      "tencent rate limited",
			err:       tcerrors.NewTencentCloudSDKError("RequestLimitExceeded", "too many", "req-2"),
			rejection: tencentRejection,
			transport: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("create record", tt.err, tt.rejection)

			var se *domain.StoreError
			if !errors.As(err, &se) {
				t.Fatalf("expected *domain.StoreError, got %T", err)
			}
			if tt.transport != (se.Kind == domain.StoreErrorTransport) {
				t.Errorf("expected transport=%v, got kind %s", tt.transport, se.Kind)
			}
			if tt.reason != "" && se.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, se.Reason)
			}
			if !errors.Is(err, tt.err) {
				t.Error("expected cause to be preserved")
			}
		})
	}

	if classify("x", nil, nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestInvoke_RetriesTransportOnly(t *testing.T) {
	opts := Options{MaxAttempts: 3, RetryDelay: time.Millisecond}

	t.Run("transport retried until success", func(t *testing.T) {
		calls := 0
		got, err := invoke(context.Background(), opts, "list records", nil, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, timeoutErr{}
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 || calls != 3 {
			t.Errorf("expected 42 after 3 calls, got %d after %d", got, calls)
		}
	})

	t.Run("rejection not retried", func(t *testing.T) {
		calls := 0
		_, err := invoke(context.Background(), opts, "create record", nil, func() (int, error) {
			calls++
			return 0, errors.New("record exists")
		})
		if !domain.IsRejectedError(err) {
			t.Errorf("expected rejected error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("exhausted transport stays transport", func(t *testing.T) {
		_, err := invoke(context.Background(), opts, "delete record", nil, func() (int, error) {
			return 0, timeoutErr{}
		})
		if !domain.IsTransportError(err) {
			t.Errorf("expected transport error, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := invoke(ctx, opts, "list records", nil, func() (int, error) { return 1, nil })
		if !domain.IsTransportError(err) {
			t.Errorf("expected transport error, got %v", err)
		}
	})
}

func TestFilterRecords(t *testing.T) {
	records := []entity.DNSRecord{
		{Type: entity.DNSRecordTypeA, Name: "peer_10.example.com"},
		{Type: entity.DNSRecordTypeA, Name: "www.example.com"},
		{Type: entity.DNSRecordTypeTXT, Name: "peer_10.example.com"},
	}
	got := filterRecords(records, entity.RecordFilter{Type: entity.DNSRecordTypeA, Prefix: "peer_", Suffix: ".example.com"})
	if len(got) != 1 || got[0].Name != "peer_10.example.com" {
		t.Errorf("unexpected filter result %v", got)
	}
}

func TestUnquoteTXT(t *testing.T) {
	if got := unquoteTXT(`"tcp://a:1"`); got != "tcp://a:1" {
		t.Errorf("expected quotes stripped, got %s", got)
	}
	if got := unquoteTXT("tcp://a:1"); got != "tcp://a:1" {
		t.Errorf("expected unchanged, got %s", got)
	}
}

func TestBuildCloudflareParam(t *testing.T) {
	for _, typ := range []entity.DNSRecordType{entity.DNSRecordTypeA, entity.DNSRecordTypeTXT, entity.DNSRecordTypeSRV} {
		rec := entity.DNSRecord{Type: typ, Name: "x.example.com", Value: "10 10 7000 a.example.net", TTL: 300}
		if typ == entity.DNSRecordTypeA {
			rec.Value = "203.0.113.5"
		}
		if _, err := buildCloudflareParam(rec); err != nil {
			t.Errorf("%s: unexpected error: %v", typ, err)
		}
	}

	if _, err := buildCloudflareParam(entity.DNSRecord{Type: entity.DNSRecordTypeSRV, Value: "broken"}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := buildCloudflareParam(entity.DNSRecord{Type: "MX", Value: "10 mx"}); !errors.Is(err, domain.ErrUnsupportedRecordType) {
		t.Errorf("expected ErrUnsupportedRecordType, got %v", err)
	}
}
