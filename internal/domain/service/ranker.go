package service

import (
	"cmp"
	"slices"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
)

// Rank keeps the successful probes, orders them by ascending latency and truncates to
// maxRecords when it is positive. Equal latencies keep their input order.
func Rank(results []entity.ProbeResult, maxRecords int) ([]entity.ProbeResult, error) {
	ranked := make([]entity.ProbeResult, 0, len(results))
	for _, r := range results {
		if r.Success {
			ranked = append(ranked, r)
		}
	}
	if len(ranked) == 0 {
		return nil, domain.ErrNoReachablePeers
	}

	slices.SortStableFunc(ranked, func(a, b entity.ProbeResult) int {
		return cmp.Compare(a.Latency, b.Latency)
	})

	if maxRecords > 0 && len(ranked) > maxRecords {
		ranked = ranked[:maxRecords]
	}
	return ranked, nil
}
