package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/czerwonk/pinggraph/config"
	"github.com/digineo/go-ping"
	probing "github.com/prometheus-community/pro-bing"
)

// ErrNoReply is returned when an echo request was not answered in time.
var ErrNoReply = errors.New("no reply")

// Pinger sends a single ICMP echo request. Implementations must be safe for
// concurrent use.
type Pinger interface {
	// Ping returns the round trip time of one echo request. The context
	// bounds the wait for the reply.
	Ping(ctx context.Context, addr *net.IPAddr) (time.Duration, error)
	Close()
}

// NewPinger creates the pinger selected by cfg.Backend.
func NewPinger(cfg config.ProbeConfig) (Pinger, error) {
	switch cfg.Backend {
	case config.BackendProbing:
		return newProbingPinger(cfg.Privileged, cfg.PayloadSize), nil
	case config.BackendDigineo, "":
		return newDigineoPinger(cfg.PayloadSize)
	default:
		return nil, fmt.Errorf("unknown ping backend %q", cfg.Backend)
	}
}

// The following are used to keep track of the last used ping ID field value,
// and to pick a new one. Each new ping ID is incremented by pingIDIncr,
// which is a large relatively-prime value chosen to distribute the ID values
// as evenly as possible over the entire space in a deterministic manner.
// The first value chosen is the PID.
const pingIDIncr = 29479

var lastPingID = uint32(os.Getpid() - pingIDIncr)

// newPingID returns a new ID value which won't overlap with any recent
// previous values. The first 1024 values are skipped since the kernel and
// the `ping` command tend to use low numbers.
func newPingID() uint16 {
	for {
		if id := uint16(atomic.AddUint32(&lastPingID, pingIDIncr)); id >= 1024 {
			return id
		}
	}
}

type digineoPinger struct {
	pinger *ping.Pinger
}

func newDigineoPinger(payloadSize uint16) (*digineoPinger, error) {
	bind4, bind6 := bindAddresses()

	pinger, err := ping.New(bind4, bind6)
	if err != nil {
		return nil, fmt.Errorf("cannot open ICMP socket: %w", err)
	}
	pinger.Id = newPingID()

	if payloadSize > 0 && pinger.PayloadSize() != payloadSize {
		pinger.SetPayloadSize(payloadSize)
	}

	return &digineoPinger{pinger: pinger}, nil
}

// bindAddresses returns the wildcard addresses of the IP versions which are
// enabled on this host.
func bindAddresses() (bind4, bind6 string) {
	if ln, err := net.Listen("tcp4", "127.0.0.1:0"); err == nil {
		ln.Close()
		bind4 = "0.0.0.0"
	}
	if ln, err := net.Listen("tcp6", "[::1]:0"); err == nil {
		ln.Close()
		bind6 = "::"
	}
	return bind4, bind6
}

func (p *digineoPinger) Ping(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
	return p.pinger.PingContext(ctx, addr)
}

func (p *digineoPinger) Close() {
	p.pinger.Close()
}

// probingPinger runs a single-packet pro-bing pinger per request. It works
// without raw socket privileges when privileged is false.
type probingPinger struct {
	privileged bool
	size       int
}

func newProbingPinger(privileged bool, payloadSize uint16) *probingPinger {
	return &probingPinger{privileged: privileged, size: int(payloadSize)}
}

const defaultProbingTimeout = time.Second

func (p *probingPinger) Ping(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
	pinger, err := probing.NewPinger(addr.String())
	if err != nil {
		return 0, err
	}
	pinger.Count = 1
	pinger.SetPrivileged(p.privileged)
	if p.size > 0 {
		pinger.Size = p.size
	}

	pinger.Timeout = defaultProbingTimeout
	if deadline, ok := ctx.Deadline(); ok {
		pinger.Timeout = time.Until(deadline)
	}

	if err := pinger.RunWithContext(ctx); err != nil && ctx.Err() == nil {
		return 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 || len(stats.Rtts) == 0 {
		return 0, ErrNoReply
	}
	return stats.Rtts[0], nil
}

func (p *probingPinger) Close() {}
