package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lite-lake/peerdns/internal/domain"
)

type DNSRecordType string

const (
	DNSRecordTypeA   DNSRecordType = "A"
	DNSRecordTypeTXT DNSRecordType = "TXT"
	DNSRecordTypeSRV DNSRecordType = "SRV"
)

// DNSRecord is a record as held by a DNS store, or as desired by a plan.
// Name is always fully qualified without the trailing dot. ID is empty for planned records.
type DNSRecord struct {
	ID    string        `yaml:"id,omitempty" json:"id,omitempty"`
	Type  DNSRecordType `yaml:"type" json:"type"`
	Name  string        `yaml:"name" json:"name"`
	Value string        `yaml:"value" json:"value"`
	TTL   int           `yaml:"ttl" json:"ttl"`
}

func (r *DNSRecord) Validate() error {
	switch r.Type {
	case DNSRecordTypeA, DNSRecordTypeTXT, DNSRecordTypeSRV:
	default:
		return fmt.Errorf("%w: dns record type %s", domain.ErrInvalidType, r.Type)
	}
	if r.Name == "" {
		return domain.RequiredField("name")
	}
	if r.Value == "" {
		return domain.RequiredField("value")
	}
	if r.TTL < 0 {
		return fmt.Errorf("%w: ttl must be non-negative", domain.ErrInvalidTTL)
	}
	if r.Type == DNSRecordTypeSRV {
		if _, err := ParseSRVData(r.Value); err != nil {
			return err
		}
	}
	return nil
}

// SameContent compares type, name and value. TTL and ID are ignored.
func (r DNSRecord) SameContent(o DNSRecord) bool {
	return r.Type == o.Type && NormalizeName(r.Name) == NormalizeName(o.Name) && r.Value == o.Value
}

func (r DNSRecord) String() string {
	return fmt.Sprintf("%s %s %s", r.Type, r.Name, r.Value)
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// RecordFilter selects records by type and either an exact name or a prefix/suffix pattern.
type RecordFilter struct {
	Type   DNSRecordType
	Name   string
	Prefix string
	Suffix string
}

func (f RecordFilter) Matches(r DNSRecord) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	name := NormalizeName(r.Name)
	if f.Name != "" && name != NormalizeName(f.Name) {
		return false
	}
	if f.Prefix != "" && !strings.HasPrefix(name, strings.ToLower(f.Prefix)) {
		return false
	}
	if f.Suffix != "" && !strings.HasSuffix(name, NormalizeName(f.Suffix)) {
		return false
	}
	return true
}

func (f RecordFilter) String() string {
	switch {
	case f.Name != "":
		return fmt.Sprintf("%s %s", f.Type, f.Name)
	default:
		return fmt.Sprintf("%s %s*%s", f.Type, f.Prefix, f.Suffix)
	}
}

type SRVData struct {
	Priority int
	Weight   int
	Port     int
	Target   string
}

func (d SRVData) Value() string {
	return fmt.Sprintf("%d %d %d %s", d.Priority, d.Weight, d.Port, d.Target)
}

// ParseSRVData parses the "priority weight port target" form used by every DNS adapter.
func ParseSRVData(value string) (SRVData, error) {
	parts := strings.Fields(value)
	if len(parts) != 4 {
		return SRVData{}, fmt.Errorf("%w: srv value %q", domain.ErrInvalidValue, value)
	}
	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 || n > 65535 {
			return SRVData{}, fmt.Errorf("%w: srv value %q", domain.ErrInvalidValue, value)
		}
		nums[i] = n
	}
	return SRVData{
		Priority: nums[0],
		Weight:   nums[1],
		Port:     nums[2],
		Target:   strings.TrimSuffix(parts[3], "."),
	}, nil
}
