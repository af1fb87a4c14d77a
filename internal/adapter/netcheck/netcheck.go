// Package netcheck answers the single question "are we online" with a
// cheap TCP dial probe.
package netcheck

import (
	"context"
	"net"
	"time"

	"github.com/lucverdier/minuet/internal/ports"
)

const (
	// defaultProbeAddr is a well-known anycast resolver that answers on
	// port 53 from virtually anywhere.
	defaultProbeAddr = "1.1.1.1:53"

	defaultTimeout = 3 * time.Second
)

// Prober reports connectivity by attempting a TCP connection to a probe
// address. It never caches: streaming decisions need the current answer.
type Prober struct {
	addr    string
	timeout time.Duration
	dialer  *net.Dialer
}

// New creates a prober against addr; an empty addr uses the default probe.
func New(addr string) *Prober {
	if addr == "" {
		addr = defaultProbeAddr
	}
	return &Prober{
		addr:    addr,
		timeout: defaultTimeout,
		dialer:  &net.Dialer{},
	}
}

// Online reports whether the probe address is reachable.
func (p *Prober) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Verify that Prober implements the Connectivity interface.
var _ ports.Connectivity = (*Prober)(nil)
