package board

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// Prober issues a single ICMP echo request and reports the round trip
// time, or an error describing why no reply arrived. Implementations must
// be safe for concurrent calls; the scheduler probes every host of a
// round in parallel.
type Prober interface {
	Probe(ctx context.Context, addr *net.IPAddr) (time.Duration, error)
}

// Scheduler executes probing rounds over a fixed host set. It is the only
// component that mutates Hosts, and it does so single-threadedly after
// each round's barrier, so no locking is needed anywhere in this package.
type Scheduler struct {
	Prober Prober
	Hosts  []*Host
}

// Stats describes one finished round.
type Stats struct {
	// Replies is the number of hosts that answered this round.
	Replies int

	// Slowest is the largest successful round trip time of the round.
	// Zero when no host answered.
	Slowest time.Duration
}

// RunRound probes every host concurrently, waits until each probe has
// reached a terminal state, then appends exactly one Result per host in
// input order. A failing or even panicking probe only affects its own
// host's result; siblings always run to completion.
func (s *Scheduler) RunRound(ctx context.Context) Stats {
	results := make([]Result, len(s.Hosts))

	var wg sync.WaitGroup
	for i, h := range s.Hosts {
		if !h.Resolved() {
			results[i] = Result{Outcome: Unreachable}
			continue
		}

		wg.Add(1)
		go func(i int, addr *net.IPAddr) {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					results[i] = Result{Outcome: Unreachable}
				}
			}()
			rtt, err := s.Prober.Probe(ctx, addr)
			results[i] = Classify(rtt, err)
		}(i, h.Addr)
	}
	wg.Wait()

	var stats Stats
	for i, h := range s.Hosts {
		h.apply(results[i])
		if r := results[i]; r.Outcome == Reply {
			stats.Replies++
			if r.RTT > stats.Slowest {
				stats.Slowest = r.RTT
			}
		}
	}
	return stats
}

// Classify maps a raw probe outcome onto a Result. The mapping is pure:
// identical inputs always yield the identical Result.
func Classify(rtt time.Duration, err error) Result {
	if err == nil {
		return Result{Outcome: Reply, RTT: rtt}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Outcome: Timeout}
	}

	// Errors flagging that the request never left (no socket for the
	// address family) degrade the host to Unreachable rather than Error.
	var sendErr interface{ ProbeNotIssued() bool }
	if errors.As(err, &sendErr) && sendErr.ProbeNotIssued() {
		return Result{Outcome: Unreachable}
	}

	return Result{Outcome: Error}
}
