package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

type BackupConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	Retention int    `yaml:"retention"`
}

// Config is the resolved run configuration: file values overlaid by flags.
type Config struct {
	Provider    string                           `yaml:"provider"`
	Zone        string                           `yaml:"zone"`
	Credentials map[string]valueobject.SecretRef `yaml:"credentials"`

	RecordName string `yaml:"record_name"`
	Strategy   string `yaml:"strategy"`
	Domain     string `yaml:"domain"`
	Prefix     string `yaml:"prefix"`

	Timeout       time.Duration `yaml:"timeout"`
	TTL           int           `yaml:"ttl"`
	Weight        int           `yaml:"weight"`
	Retries       int           `yaml:"retries"`
	MaxRecords    int           `yaml:"max_records"`
	PriorityStart int           `yaml:"priority_start"`
	PriorityStep  int           `yaml:"priority_step"`
	Concurrency   int           `yaml:"concurrency"`

	PeersFile   string       `yaml:"peers_file"`
	Backup      BackupConfig `yaml:"backup"`
	MetricsFile string       `yaml:"metrics_file"`

	Debug  bool `yaml:"debug"`
	DryRun bool `yaml:"dry_run"`
}

func Default() *Config {
	return &Config{
		Provider:      constants.DefaultProvider,
		Credentials:   map[string]valueobject.SecretRef{},
		Strategy:      constants.DefaultStrategy,
		Prefix:        constants.DefaultPrefix,
		Timeout:       constants.DefaultTimeout,
		TTL:           constants.DefaultTTL,
		Weight:        constants.DefaultWeight,
		Retries:       constants.DefaultRetries,
		MaxRecords:    constants.DefaultMaxRecords,
		PriorityStart: constants.DefaultPriorityStart,
		PriorityStep:  constants.DefaultPriorityStep,
		Concurrency:   constants.DefaultConcurrency,
		PeersFile:     constants.DefaultPeersFile,
		Backup: BackupConfig{
			Backend:   constants.DefaultBackupBackend,
			Path:      constants.DefaultBackupPath,
			Retention: constants.DefaultBackupRetention,
		},
	}
}

// Normalize lowercases names, strips trailing dots and fills the zone from the domain.
func (c *Config) Normalize() {
	c.Domain = entity.NormalizeName(c.Domain)
	c.RecordName = entity.NormalizeName(c.RecordName)
	c.Zone = strings.TrimSuffix(c.Zone, ".")
	if c.Zone == "" {
		c.Zone = c.Domain
	}
	c.Strategy = strings.ToUpper(c.Strategy)
	c.Provider = strings.ToLower(c.Provider)
}

func (c *Config) ParsedStrategy() entity.Strategy {
	s, _ := entity.ParseStrategy(c.Strategy)
	return s
}

func (c *Config) SnapshotKey() entity.SnapshotKey {
	return entity.SnapshotKey{Zone: c.Zone, RecordName: c.RecordName, Strategy: c.ParsedStrategy()}
}

// Validate reports the first input error. It performs no I/O.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return domain.RequiredField("provider")
	}

	strategy, err := entity.ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}

	if c.Domain == "" {
		return domain.RequiredField("domain")
	}
	if _, ok := dns.IsDomainName(c.Domain); !ok || !strings.Contains(c.Domain, ".") {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDomain, c.Domain)
	}

	if strategy == entity.StrategySRV {
		if c.RecordName == "" {
			return domain.RequiredField("record_name")
		}
		if _, ok := dns.IsDomainName(c.RecordName); !ok {
			return fmt.Errorf("%w: record_name %s", domain.ErrInvalidName, c.RecordName)
		}
		if c.RecordName != c.Domain && !strings.HasSuffix(c.RecordName, "."+c.Domain) {
			return fmt.Errorf("%w: record_name %s is outside %s", domain.ErrInvalidName, c.RecordName, c.Domain)
		}
	}

	if c.Prefix == "" {
		return domain.RequiredField("prefix")
	}
	if _, ok := dns.IsDomainName(c.Prefix + "_0." + c.Domain); !ok || strings.Contains(c.Prefix, ".") {
		return fmt.Errorf("%w: prefix %s", domain.ErrInvalidName, c.Prefix)
	}

	// Sub-millisecond values are unit typos, e.g. 3ns meant as 3s.
	if c.Timeout < time.Millisecond {
		return fmt.Errorf("%w: timeout %s is below 1ms", domain.ErrInvalidDuration, c.Timeout)
	}
	if c.TTL < 1 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidTTL, c.TTL)
	}
	if c.Retries < 1 {
		return fmt.Errorf("%w: retries must be at least 1", domain.ErrInvalidValue)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", domain.ErrInvalidValue)
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("%w: max_records must not be negative", domain.ErrInvalidValue)
	}
	if err := checkUint16("weight", c.Weight); err != nil {
		return err
	}
	if err := checkUint16("priority_start", c.PriorityStart); err != nil {
		return err
	}
	if err := checkUint16("priority_step", c.PriorityStep); err != nil {
		return err
	}
	if strategy == entity.StrategySRV {
		if c.PriorityStep < 1 {
			return fmt.Errorf("%w: priority_step must be at least 1", domain.ErrInvalidValue)
		}
		if c.MaxRecords > 0 {
			if last := c.PriorityStart + (c.MaxRecords-1)*c.PriorityStep; last > domain.MaxPortNumber {
				return fmt.Errorf("%w: max_records %d takes priority to %d, above %d",
					domain.ErrInvalidValue, c.MaxRecords, last, domain.MaxPortNumber)
			}
		}
	}

	switch c.Backup.Backend {
	case "file", "bolt":
	default:
		return fmt.Errorf("%w: backup backend %q", domain.ErrInvalidType, c.Backup.Backend)
	}
	if c.Backup.Retention < 0 {
		return fmt.Errorf("%w: backup retention must not be negative", domain.ErrInvalidValue)
	}

	for key, ref := range c.Credentials {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("credentials[%s]: %w", key, err)
		}
	}
	return nil
}

func checkUint16(field string, v int) error {
	if v < 0 || v > domain.MaxPortNumber {
		return fmt.Errorf("%w: %s %d out of range 0-%d", domain.ErrInvalidValue, field, v, domain.MaxPortNumber)
	}
	return nil
}
