package probe

import (
	"errors"
	"fmt"
	"net"
)

var errNotBound = errors.New("need at least one bind address")

// timeoutError implements the net.Error interface. Originally taken from
// https://github.com/golang/go/blob/release-branch.go1.8/src/net/net.go#L505-L509
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

// socketMissingError reports a target whose address family has no open
// socket, so the echo request was never sent.
type socketMissingError struct {
	addr *net.IPAddr
}

func (e *socketMissingError) Error() string {
	return fmt.Sprintf("no socket for address family of %v", e.addr.IP)
}

// ProbeNotIssued marks the request as never having left this machine.
func (e *socketMissingError) ProbeNotIssued() bool { return true }
