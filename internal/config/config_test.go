package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Domain = "example.com"
	cfg.RecordName = "_mesh._tcp.example.com"
	cfg.Credentials = map[string]valueobject.SecretRef{"api_token": {Env: "CF_API_TOKEN"}}
	cfg.Normalize()
	return cfg
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peerdns.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
provider: aliyun
domain: Example.com.
record_name: _mesh._tcp.example.com
strategy: txt
timeout: 500ms
ttl: 600
max_records: 4
credentials:
  access_key_id: plain-id
  access_key_secret:
    env: ALI_SECRET
backup:
  backend: bolt
  retention: 3
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Normalize()

	if cfg.Provider != "aliyun" {
		t.Errorf("expected provider aliyun, got %s", cfg.Provider)
	}
	if cfg.Domain != "example.com" || cfg.Zone != "example.com" {
		t.Errorf("expected normalized domain and zone, got %s / %s", cfg.Domain, cfg.Zone)
	}
	if cfg.ParsedStrategy() != entity.StrategyTXT {
		t.Errorf("expected TXT, got %s", cfg.Strategy)
	}
	if cfg.Timeout != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", cfg.Timeout)
	}
	if cfg.MaxRecords != 4 || cfg.TTL != 600 {
		t.Errorf("unexpected numeric fields %+v", cfg)
	}
	if cfg.Weight != 10 || cfg.PriorityStep != 10 {
		t.Error("expected defaults to survive for unset fields")
	}
	if cfg.Credentials["access_key_id"].Plain != "plain-id" || cfg.Credentials["access_key_secret"].Env != "ALI_SECRET" {
		t.Errorf("unexpected credentials %+v", cfg.Credentials)
	}
	if cfg.Backup.Backend != "bolt" || cfg.Backup.Retention != 3 || cfg.Backup.Path != "backups" {
		t.Errorf("unexpected backup config %+v", cfg.Backup)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := Load(missing, false)
	if err != nil {
		t.Fatalf("optional file: unexpected error %v", err)
	}
	if cfg.Provider != "cloudflare" {
		t.Errorf("expected defaults, got %s", cfg.Provider)
	}

	if _, err := Load(missing, true); !errors.Is(err, domain.ErrConfigReadFailed) {
		t.Errorf("expected ErrConfigReadFailed, got %v", err)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "provder: cloudflare\n"},
		{"bad duration", "timeout: soon\n"},
		{"unitless duration", "timeout: 3\n"},
		{"bad type", "ttl: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content), true)
			if !errors.Is(err, domain.ErrConfigParseFailed) {
				t.Errorf("expected ErrConfigParseFailed, got %v", err)
			}
		})
	}
}

func TestLoad_SubMillisecondTimeout(t *testing.T) {
	cfg, err := Load(writeFile(t, "domain: example.com\nrecord_name: _mesh._tcp.example.com\ntimeout: 3ns\n"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Normalize()
	cfg.Credentials = map[string]valueobject.SecretRef{"api_token": {Env: "CF_API_TOKEN"}}

	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeFile(t, ""), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Credentials == nil {
		t.Error("expected non-nil credentials map")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"bad strategy", func(c *Config) { c.Strategy = "MX" }, domain.ErrInvalidStrategy},
		{"missing domain", func(c *Config) { c.Domain = "" }, domain.ErrRequired},
		{"single label domain", func(c *Config) { c.Domain = "localhost" }, domain.ErrInvalidDomain},
		{"record outside domain", func(c *Config) { c.RecordName = "_mesh._tcp.other.org" }, domain.ErrInvalidName},
		{"srv needs record name", func(c *Config) { c.RecordName = "" }, domain.ErrRequired},
		{"txt ignores record name", func(c *Config) { c.Strategy = "TXT"; c.RecordName = "" }, nil},
		{"dotted prefix", func(c *Config) { c.Prefix = "a.b" }, domain.ErrInvalidName},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, domain.ErrInvalidDuration},
		{"nanosecond timeout", func(c *Config) { c.Timeout = 3 }, domain.ErrInvalidDuration},
		{"millisecond timeout", func(c *Config) { c.Timeout = time.Millisecond }, nil},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, domain.ErrInvalidTTL},
		{"zero retries", func(c *Config) { c.Retries = 0 }, domain.ErrInvalidValue},
		{"negative max records", func(c *Config) { c.MaxRecords = -1 }, domain.ErrInvalidValue},
		{"weight overflow", func(c *Config) { c.Weight = 70000 }, domain.ErrInvalidValue},
		{"zero priority step", func(c *Config) { c.PriorityStep = 0 }, domain.ErrInvalidValue},
		{"txt ignores priority step", func(c *Config) { c.Strategy = "TXT"; c.PriorityStep = 0 }, nil},
		{"max records within ladder", func(c *Config) { c.MaxRecords = 6553 }, nil},
		{"max records past ladder", func(c *Config) { c.MaxRecords = 6554 }, domain.ErrInvalidValue},
		{"txt max records unbounded", func(c *Config) { c.Strategy = "TXT"; c.MaxRecords = 100000 }, nil},
		{"bad backup backend", func(c *Config) { c.Backup.Backend = "s3" }, domain.ErrInvalidType},
		{"empty credential", func(c *Config) { c.Credentials["secret"] = valueobject.SecretRef{} }, domain.ErrEmptyValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSnapshotKey(t *testing.T) {
	key := validConfig().SnapshotKey()
	want := entity.SnapshotKey{Zone: "example.com", RecordName: "_mesh._tcp.example.com", Strategy: entity.StrategySRV}
	if key != want {
		t.Errorf("expected %+v, got %+v", want, key)
	}
}
