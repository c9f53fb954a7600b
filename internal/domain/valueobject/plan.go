package valueobject

import "github.com/lite-lake/peerdns/internal/domain/entity"

// PlannedRecord is one managed record together with the ranked peer it publishes.
// Alias is set for SRV records whose target is a synthetic A record.
type PlannedRecord struct {
	Record entity.DNSRecord
	Peer   entity.ProbeResult
	Alias  *entity.DNSRecord
}

// RecordPlan is the desired state of the managed record set for one run.
type RecordPlan struct {
	strategy entity.Strategy
	records  []PlannedRecord
}

func NewRecordPlan(strategy entity.Strategy) *RecordPlan {
	return &RecordPlan{
		strategy: strategy,
		records:  make([]PlannedRecord, 0),
	}
}

func (p *RecordPlan) Strategy() entity.Strategy { return p.strategy }
func (p *RecordPlan) Entries() []PlannedRecord  { return p.records }
func (p *RecordPlan) Len() int                  { return len(p.records) }

func (p *RecordPlan) Add(rec PlannedRecord) {
	p.records = append(p.records, rec)
}

// Records returns the managed records in rank order.
func (p *RecordPlan) Records() []entity.DNSRecord {
	out := make([]entity.DNSRecord, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r.Record)
	}
	return out
}

// Aliases returns the auxiliary A records in rank order.
func (p *RecordPlan) Aliases() []entity.DNSRecord {
	var out []entity.DNSRecord
	for _, r := range p.records {
		if r.Alias != nil {
			out = append(out, *r.Alias)
		}
	}
	return out
}

// All returns aliases followed by managed records.
func (p *RecordPlan) All() []entity.DNSRecord {
	return append(p.Aliases(), p.Records()...)
}
