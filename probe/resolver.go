package probe

import (
	"context"
	"net"
	"strings"

	"github.com/czerwonk/pinggraph/config"
	"github.com/jackpal/gateway"
)

type Resolver interface {
	// LookupIPAddr resolves a host to its IP addresses.
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// NewResolver returns a resolver which asks nameserver, or the system
// resolver when nameserver is empty. The gateway pseudo address resolves to
// the default gateway.
func NewResolver(nameserver string) Resolver {
	return &gatewayResolver{
		Resolver: dnsResolver(nameserver),
		discover: gateway.DiscoverGateway,
	}
}

func dnsResolver(nameserver string) Resolver {
	if nameserver == "" {
		return net.DefaultResolver
	}

	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(strings.Trim(nameserver, "[]"), "53")
	}
	dialer := func(ctx context.Context, network, address string) (net.Conn, error) {
		d := net.Dialer{}

		return d.DialContext(ctx, "udp", nameserver)
	}

	return &net.Resolver{PreferGo: true, Dial: dialer}
}

type gatewayResolver struct {
	Resolver
	discover func() (net.IP, error)
}

func (r *gatewayResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if host != config.GatewayAddress {
		return r.Resolver.LookupIPAddr(ctx, host)
	}

	ip, err := r.discover()
	if err != nil {
		return nil, err
	}
	return []net.IPAddr{{IP: ip}}, nil
}
