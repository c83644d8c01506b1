package probe

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// receiver drains one socket until it is closed, handing every readable
// datagram to parse.
func (p *Pinger) receiver(proto int, conn net.PacketConn) {
	defer p.wg.Done()

	rb := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(rb)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Errorf("reading from ICMP socket: %v", err)
			continue
		}

		p.parse(proto, rb[:n], time.Now())
	}
}

// parse evaluates one inbound ICMP message. Echo replies finish their
// waiting request; destination-unreachable notices finish the request
// found in their invoking packet, with an error naming the ICMP type.
func (p *Pinger) parse(proto int, b []byte, tRecv time.Time) {
	m, err := icmp.ParseMessage(proto, b)
	if err != nil {
		return
	}

	switch m.Type {
	case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
		if echo, ok := m.Body.(*icmp.Echo); ok {
			p.process(echo, nil, &tRecv)
		}

	case ipv4.ICMPTypeDestinationUnreachable, ipv6.ICMPTypeDestinationUnreachable:
		body, ok := m.Body.(*icmp.DstUnreach)
		if !ok {
			return
		}
		if echo, ok := invokingEcho(proto, body.Data); ok {
			p.process(echo, fmt.Errorf("%v", m.Type), nil)
		}
	}
}

// invokingEcho digs the original echo request out of an ICMP error
// payload, which carries the IP header plus the leading bytes of the
// offending packet.
func invokingEcho(proto int, data []byte) (*icmp.Echo, bool) {
	var offset int
	switch proto {
	case protocolICMP:
		hdr, err := ipv4.ParseHeader(data)
		if err != nil {
			return nil, false
		}
		offset = hdr.Len
	case protocolICMPv6:
		if _, err := ipv6.ParseHeader(data); err != nil {
			return nil, false
		}
		offset = ipv6.HeaderLen
	}
	if offset <= 0 || offset > len(data) {
		return nil, false
	}

	msg, err := icmp.ParseMessage(proto, data[offset:])
	if err != nil {
		return nil, false
	}
	echo, ok := msg.Body.(*icmp.Echo)
	return echo, ok && echo != nil
}

// process finishes the request waiting on this sequence number, if any.
func (p *Pinger) process(echo *icmp.Echo, result error, tRecv *time.Time) {
	// Raw sockets see every process's echo replies; keep only ours.
	// Datagram sockets already demultiplex by identifier in the kernel.
	if p.privileged && echo.ID != int(p.id) {
		return
	}

	seq := uint16(echo.Seq)

	p.mtx.Lock()
	req := p.requests[seq]
	delete(p.requests, seq)
	p.mtx.Unlock()

	if req != nil {
		req.handleReply(result, tRecv)
	}
}
