package service

import (
	"fmt"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

type PlannerConfig struct {
	Layout        Layout
	Strategy      entity.Strategy
	TTL           int
	Weight        int
	PriorityStart int
	PriorityStep  int
}

type PlannerService struct {
	cfg PlannerConfig
}

func NewPlannerService(cfg PlannerConfig) *PlannerService {
	return &PlannerService{cfg: cfg}
}

func (s *PlannerService) Layout() Layout { return s.cfg.Layout }

// Capacity is the number of peers the priority ladder can hold before a priority
// leaves the 16-bit range. Zero means unbounded (TXT).
func (s *PlannerService) Capacity() int {
	if s.cfg.Strategy != entity.StrategySRV {
		return 0
	}
	if s.cfg.PriorityStep < 1 {
		return 1
	}
	return (domain.MaxPortNumber-s.cfg.PriorityStart)/s.cfg.PriorityStep + 1
}

// Plan maps ranked peers onto the target record set. The i-th peer gets the i-th
// priority step (SRV) or index i+1 (TXT).
func (s *PlannerService) Plan(ranked []entity.ProbeResult) (*valueobject.RecordPlan, error) {
	plan := valueobject.NewRecordPlan(s.cfg.Strategy)
	aliases := make(map[string]string)

	for i, peer := range ranked {
		var (
			rec   entity.DNSRecord
			alias *entity.DNSRecord
			err   error
		)
		switch s.cfg.Strategy {
		case entity.StrategySRV:
			rec, alias, err = s.planSRV(i, peer.Peer)
		case entity.StrategyTXT:
			rec, err = s.planTXT(i, peer.Peer)
		default:
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStrategy, s.cfg.Strategy)
		}
		if err != nil {
			return nil, domain.WrapEntity("peer", peer.Peer.String(), err)
		}
		if alias != nil {
			if owner, ok := aliases[alias.Name]; ok {
				return nil, domain.WrapEntity("peer", peer.Peer.String(),
					fmt.Errorf("%w: alias %s already taken by %s", domain.ErrInvalidValue, alias.Name, owner))
			}
			aliases[alias.Name] = peer.Peer.String()
		}
		plan.Add(valueobject.PlannedRecord{Record: rec, Alias: alias, Peer: peer})
	}
	return plan, nil
}

func (s *PlannerService) planSRV(i int, peer entity.Peer) (entity.DNSRecord, *entity.DNSRecord, error) {
	priority := s.cfg.PriorityStart + i*s.cfg.PriorityStep
	target := peer.Host

	var alias *entity.DNSRecord
	if peer.IsIPv4() {
		alias = &entity.DNSRecord{
			Type:  entity.DNSRecordTypeA,
			Name:  s.cfg.Layout.AliasName(priority),
			Value: peer.Host,
			TTL:   s.cfg.TTL,
		}
		target = alias.Name
	}

	data := entity.SRVData{
		Priority: priority,
		Weight:   s.cfg.Weight,
		Port:     peer.Port,
		Target:   target,
	}
	rec := entity.DNSRecord{
		Type:  entity.DNSRecordTypeSRV,
		Name:  s.cfg.Layout.RecordName,
		Value: data.Value(),
		TTL:   s.cfg.TTL,
	}
	if err := rec.Validate(); err != nil {
		return entity.DNSRecord{}, nil, err
	}
	return rec, alias, nil
}

func (s *PlannerService) planTXT(i int, peer entity.Peer) (entity.DNSRecord, error) {
	rec := entity.DNSRecord{
		Type:  entity.DNSRecordTypeTXT,
		Name:  s.cfg.Layout.TXTName(i + 1),
		Value: fmt.Sprintf("tcp://%s:%d", peer.Host, peer.Port),
		TTL:   s.cfg.TTL,
	}
	if err := rec.Validate(); err != nil {
		return entity.DNSRecord{}, err
	}
	return rec, nil
}
