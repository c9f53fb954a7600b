package entity

import (
	"fmt"
	"strings"

	"github.com/lite-lake/peerdns/internal/domain"
)

// Strategy selects how ranked peers are published.
type Strategy string

const (
	StrategySRV Strategy = "SRV"
	StrategyTXT Strategy = "TXT"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToUpper(strings.TrimSpace(s))) {
	case StrategySRV:
		return StrategySRV, nil
	case StrategyTXT:
		return StrategyTXT, nil
	default:
		return "", fmt.Errorf("%w: %q (want SRV or TXT)", domain.ErrInvalidStrategy, s)
	}
}

// ManagedType is the record type whose full set a run owns.
func (s Strategy) ManagedType() DNSRecordType {
	if s == StrategyTXT {
		return DNSRecordTypeTXT
	}
	return DNSRecordTypeSRV
}
