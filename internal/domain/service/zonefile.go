package service

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/lite-lake/peerdns/internal/domain"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

// RenderZone prints the plan in master-file syntax, aliases first, one record per line.
func RenderZone(plan *valueobject.RecordPlan) (string, error) {
	var b strings.Builder
	for _, rec := range plan.All() {
		rr, err := ToRR(rec)
		if err != nil {
			return "", err
		}
		b.WriteString(rr.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// ToRR converts a record to its wire representation.
func ToRR(rec entity.DNSRecord) (dns.RR, error) {
	hdr := dns.RR_Header{
		Name:  dns.Fqdn(rec.Name),
		Class: dns.ClassINET,
		Ttl:   uint32(rec.TTL),
	}

	switch rec.Type {
	case entity.DNSRecordTypeA:
		ip := net.ParseIP(rec.Value).To4()
		if ip == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidIP, rec.Value)
		}
		hdr.Rrtype = dns.TypeA
		return &dns.A{Hdr: hdr, A: ip}, nil
	case entity.DNSRecordTypeTXT:
		hdr.Rrtype = dns.TypeTXT
		return &dns.TXT{Hdr: hdr, Txt: []string{rec.Value}}, nil
	case entity.DNSRecordTypeSRV:
		data, err := entity.ParseSRVData(rec.Value)
		if err != nil {
			return nil, err
		}
		hdr.Rrtype = dns.TypeSRV
		return &dns.SRV{
			Hdr:      hdr,
			Priority: uint16(data.Priority),
			Weight:   uint16(data.Weight),
			Port:     uint16(data.Port),
			Target:   dns.Fqdn(data.Target),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedRecordType, rec.Type)
	}
}
