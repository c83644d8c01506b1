package board

import (
	"net"
	"time"
)

// Host is one dashboard row: a display name, the address resolved for it
// at startup, and the sliding window of probe outcomes.
//
// Name and Addr never change after construction. History and the summary
// counters are mutated by the Scheduler only, after each round's barrier.
type Host struct {
	// Name is the identity the operator typed, kept verbatim for display.
	Name string

	// Addr is the probe target. A nil Addr marks a host whose name never
	// resolved; it keeps its row and reports Unreachable every round, so
	// the operator sees that it never worked instead of it vanishing.
	Addr *net.IPAddr

	History History

	// Whole-run counters feeding the end-of-run summary. Deliberately
	// scalar: the summary must not require more memory than the window.
	rounds  int
	replies int
	rttSum  time.Duration
	rttMin  time.Duration
	rttMax  time.Duration
}

// NewHost builds a host record with an empty history of the given
// capacity. addr may be nil for hosts that failed resolution.
func NewHost(name string, addr *net.IPAddr, capacity int) *Host {
	return &Host{Name: name, Addr: addr, History: NewHistory(capacity)}
}

// Resolved reports whether startup resolution produced a probe target.
func (h *Host) Resolved() bool { return h.Addr != nil }

// Last returns the newest result, if a round has completed.
func (h *Host) Last() (Result, bool) { return h.History.Last() }

// apply appends one round's result and rolls it into the counters.
func (h *Host) apply(r Result) {
	h.History.Append(r)
	h.rounds++

	if r.Outcome != Reply {
		return
	}
	h.replies++
	h.rttSum += r.RTT
	if h.replies == 1 || r.RTT < h.rttMin {
		h.rttMin = r.RTT
	}
	if r.RTT > h.rttMax {
		h.rttMax = r.RTT
	}
}

// Summary condenses a host's whole run.
type Summary struct {
	Name    string
	Rounds  int
	Replies int
	Min     time.Duration
	Avg     time.Duration
	Max     time.Duration
}

// LossPercent is the share of rounds without a reply, in percent.
func (s Summary) LossPercent() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Rounds-s.Replies) / float64(s.Rounds) * 100
}

// Summarize reports the cumulative counters for one host.
func (h *Host) Summarize() Summary {
	s := Summary{Name: h.Name, Rounds: h.rounds, Replies: h.replies}
	if h.replies > 0 {
		s.Min = h.rttMin
		s.Max = h.rttMax
		s.Avg = h.rttSum / time.Duration(h.replies)
	}
	return s
}
