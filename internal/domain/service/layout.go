package service

import (
	"fmt"

	"github.com/lite-lake/peerdns/internal/domain/entity"
)

// Layout holds the naming rules shared by the planner and the reconciler.
// RecordName and Domain are fully qualified, without a trailing dot.
type Layout struct {
	RecordName string
	Domain     string
	Prefix     string
}

// AliasName is the synthetic A record standing in for an IP peer at the given priority.
func (l Layout) AliasName(priority int) string {
	return fmt.Sprintf("%s_%d.%s", l.Prefix, priority, l.Domain)
}

// TXTName is the name of the TXT record at the 1-based index.
func (l Layout) TXTName(index int) string {
	return fmt.Sprintf("%s-%d.%s", l.Prefix, index, l.Domain)
}

// ManagedFilter selects every record of the managed type that a run owns.
func (l Layout) ManagedFilter(strategy entity.Strategy) entity.RecordFilter {
	if strategy == entity.StrategyTXT {
		return entity.RecordFilter{
			Type:   entity.DNSRecordTypeTXT,
			Prefix: l.Prefix + "-",
			Suffix: "." + l.Domain,
		}
	}
	return entity.RecordFilter{
		Type: entity.DNSRecordTypeSRV,
		Name: l.RecordName,
	}
}

// AliasFilter selects the A records under the managed prefix.
func (l Layout) AliasFilter() entity.RecordFilter {
	return entity.RecordFilter{
		Type:   entity.DNSRecordTypeA,
		Prefix: l.Prefix + "_",
		Suffix: "." + l.Domain,
	}
}
