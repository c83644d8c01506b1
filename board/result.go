package board

import (
	"fmt"
	"time"
)

// Outcome classifies what became of a single echo request.
type Outcome uint8

const (
	// Reply means an echo reply arrived; the Result carries its round trip time.
	Reply Outcome = iota

	// Timeout means no reply arrived within the echo wait.
	Timeout

	// Error covers ICMP-level failures, e.g. destination unreachable.
	Error

	// Unreachable means the request could not even be issued for this
	// host: the name never resolved, or no suitable socket existed.
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case Reply:
		return "reply"
	case Timeout:
		return "timeout"
	case Error:
		return "error"
	case Unreachable:
		return "unreachable"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Result is the classified outcome of one host's probe in one round.
// RTT is meaningful only when Outcome is Reply.
type Result struct {
	Outcome Outcome
	RTT     time.Duration
}
