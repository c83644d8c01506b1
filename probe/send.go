package probe

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Probe sends a single echo request to addr and waits for the reply. It
// returns the measured round trip time, or an error the caller can
// classify: lost replies implement net.Error with Timeout() true, and
// errors for which no packet left this machine implement
// ProbeNotIssued() true.
//
// There is no per-call deadline knob; every probe waits EchoWait. The
// context only serves to abandon a probe early on shutdown.
func (p *Pinger) Probe(ctx context.Context, addr *net.IPAddr) (rtt time.Duration, err error) {
	seq := uint16(atomic.AddUint32(&sequence, 1))

	p.payloadMtx.RLock()
	payload := p.payload
	p.payloadMtx.RUnlock()

	echo := icmp.Echo{
		Seq:  int(seq),
		Data: payload,
	}
	msg := icmp.Message{Code: 0, Body: &echo}

	var conn net.PacketConn
	if addr.IP.To4() != nil {
		msg.Type = ipv4.ICMPTypeEcho
		conn = p.conn4
	} else {
		msg.Type = ipv6.ICMPTypeEchoRequest
		conn = p.conn6
	}
	if conn == nil {
		return 0, &socketMissingError{addr: addr}
	}

	// The kernel assigns the echo identifier on datagram sockets; set
	// our own only when we control the raw socket.
	if p.privileged {
		echo.ID = int(p.id)
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}

	req := newRequest()
	p.mtx.Lock()
	p.requests[seq] = req
	p.mtx.Unlock()

	dst := net.Addr(addr)
	if !p.privileged {
		dst = &net.UDPAddr{IP: addr.IP, Zone: addr.Zone}
	}

	// start the measurement
	req.tStart = time.Now()
	if _, err := conn.WriteTo(wb, dst); err != nil {
		// Deregister first; a stray reply for this sequence number must
		// not finish the request a second time.
		p.mtx.Lock()
		delete(p.requests, seq)
		p.mtx.Unlock()
		req.handleReply(err, nil)
	}

	select {
	case <-req.done:
		rtt, err = req.roundTripTime()
	case <-time.After(EchoWait):
		err = &timeoutError{}
	case <-ctx.Done():
		err = ctx.Err()
	}

	p.mtx.Lock()
	delete(p.requests, seq)
	p.mtx.Unlock()

	return rtt, err
}
