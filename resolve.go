package pingm

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Resolver turns a host name into a probe target. It is consulted once
// per host at startup; targets stay fixed for the whole run.
type Resolver interface {
	Resolve(ctx context.Context, host string) (*net.IPAddr, error)
}

// defaultLookupTimeout bounds a single lookup, so one dead DNS server
// cannot stall startup for long.
const defaultLookupTimeout = 3 * time.Second

// NetResolver resolves through the system resolver and prefers IPv4,
// the family most likely to have a working echo socket.
type NetResolver struct {
	Timeout time.Duration // per lookup; 0 means defaultLookupTimeout
}

func (r NetResolver) Resolve(ctx context.Context, host string) (*net.IPAddr, error) {
	// literal addresses bypass DNS
	if ip := net.ParseIP(host); ip != nil {
		return &net.IPAddr{IP: ip}, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}

	for i := range addrs {
		if addrs[i].IP.To4() != nil {
			return &addrs[i], nil
		}
	}
	return &addrs[0], nil
}
