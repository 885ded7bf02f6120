package probe

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

type ipVersion uint8

const (
	ipv4 ipVersion = 4
	ipv6 ipVersion = 6
)

func (ipv ipVersion) String() string {
	return fmt.Sprintf("%d", ipv)
}

func getIPVersion(addr net.IPAddr) ipVersion {
	if addr.IP.To4() == nil {
		return ipv6
	}
	return ipv4
}

// Counters are the probe totals of a target since start.
type Counters struct {
	Sent    uint64
	Lost    uint64
	Skipped uint64
}

// Target is a configured server together with its resolved address.
type Target struct {
	host     string
	resolver Resolver
	addr     *net.IPAddr
	mutex    sync.RWMutex

	inFlight atomic.Bool
	sent     atomic.Uint64
	lost     atomic.Uint64
	skipped  atomic.Uint64
}

// NewTarget creates an unresolved target for host.
func NewTarget(host string, resolver Resolver) *Target {
	return &Target{host: host, resolver: resolver}
}

// Host returns the configured address.
func (t *Target) Host() string {
	return t.host
}

// Resolve looks up the host and keeps the preferred address, IPv4 first. On
// failure the previous address is kept.
func (t *Target) Resolve(ctx context.Context) error {
	addrs, err := t.resolver.LookupIPAddr(ctx, t.host)
	if err != nil {
		return fmt.Errorf("error resolving target %s: %w", t.host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("error resolving target %s: no addresses", t.host)
	}

	preferred := addrs[0]
	for _, a := range addrs {
		if getIPVersion(a) == ipv4 {
			preferred = a
			break
		}
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.addr == nil || !t.addr.IP.Equal(preferred.IP) {
		log.Infof("using %v for host %s", preferred.IP, t.host)
	}
	t.addr = &preferred
	return nil
}

// Addr returns a copy of the resolved address, nil if unresolved.
func (t *Target) Addr() *net.IPAddr {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if t.addr == nil {
		return nil
	}
	a := *t.addr
	return &a
}

// IPLabels returns the ip and ip version used in metrics, empty when unresolved.
func (t *Target) IPLabels() (ip, version string) {
	addr := t.Addr()
	if addr == nil {
		return "", ""
	}
	return addr.String(), getIPVersion(*addr).String()
}

func (t *Target) nameForIP(addr net.IPAddr) string {
	return fmt.Sprintf("%s %s %s", t.host, addr.IP, getIPVersion(addr))
}

// Counters returns the probe totals.
func (t *Target) Counters() Counters {
	return Counters{
		Sent:    t.sent.Load(),
		Lost:    t.lost.Load(),
		Skipped: t.skipped.Load(),
	}
}
