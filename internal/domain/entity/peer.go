package entity

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/miekg/dns"

	"github.com/lite-lake/peerdns/internal/domain"
)

// Peer is a candidate mesh endpoint. Host is either a DNS name or an IPv4 literal.
type Peer struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

func (p Peer) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func (p Peer) String() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// IsIPv4 reports whether Host is a literal IPv4 address.
func (p Peer) IsIPv4() bool {
	addr, err := netip.ParseAddr(p.Host)
	return err == nil && addr.Is4()
}

func (p Peer) Validate() error {
	if p.Host == "" {
		return domain.RequiredField("host")
	}
	if err := ValidatePort(p.Port); err != nil {
		return err
	}
	if p.IsIPv4() {
		return nil
	}
	if _, err := netip.ParseAddr(p.Host); err == nil {
		return fmt.Errorf("%w: only IPv4 literals are supported: %s", domain.ErrInvalidIP, p.Host)
	}
	if _, ok := dns.IsDomainName(p.Host); !ok {
		return fmt.Errorf("%w: %s", domain.ErrInvalidName, p.Host)
	}
	return nil
}

func ValidatePort(port int) error {
	if port < 1 || port > domain.MaxPortNumber {
		return fmt.Errorf("%w: %d out of range 1-%d", domain.ErrInvalidPort, port, domain.MaxPortNumber)
	}
	return nil
}
