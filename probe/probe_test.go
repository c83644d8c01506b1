package probe

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// TestProbeLoopback needs either raw socket privileges or a permissive
// net.ipv4.ping_group_range; it skips itself where neither is granted.
func TestProbeLoopback(t *testing.T) {
	p, err := New("0.0.0.0", "")
	if err != nil {
		t.Skipf("cannot open ICMP socket: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), EchoWait)
	defer cancel()

	addr := &net.IPAddr{IP: net.IPv4(127, 0, 0, 1)}
	rtt, err := p.Probe(ctx, addr)
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))
	assert.Less(t, rtt, EchoWait)
}

func TestProbeWithoutSocket(t *testing.T) {
	assert := assert.New(t)

	// no sockets at all, as if the bind addresses were empty
	p := &Pinger{requests: make(map[uint16]*request)}

	_, err := p.Probe(context.Background(), &net.IPAddr{IP: net.ParseIP("::1")})
	assert.Error(err)

	var missing interface{ ProbeNotIssued() bool }
	assert.True(errors.As(err, &missing))
	assert.True(missing.ProbeNotIssued())
}

func TestTimeoutErrorContract(t *testing.T) {
	assert := assert.New(t)

	var err error = &timeoutError{}
	var netErr net.Error
	assert.True(errors.As(err, &netErr))
	assert.True(netErr.Timeout())
}

func TestProcessMatchesSequence(t *testing.T) {
	assert := assert.New(t)

	p := &Pinger{
		id:         9,
		privileged: true,
		requests:   make(map[uint16]*request),
	}
	req := newRequest()
	req.tStart = time.Now()
	p.requests[5] = req

	recv := time.Now()

	// foreign identifier, must not touch our request
	p.process(&icmp.Echo{ID: 8, Seq: 5}, nil, &recv)
	select {
	case <-req.done:
		t.Fatal("request finished by foreign echo reply")
	default:
	}

	p.process(&icmp.Echo{ID: 9, Seq: 5}, nil, &recv)
	select {
	case <-req.done:
	default:
		t.Fatal("request not finished by matching echo reply")
	}

	rtt, err := req.roundTripTime()
	assert.NoError(err)
	assert.GreaterOrEqual(rtt, time.Duration(0))
}

func TestInvokingEcho(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	inner, err := (&icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: 7, Seq: 42, Data: []byte("ding")},
	}).Marshal(nil)
	require.NoError(err)

	hdr, err := (&ipv4.Header{
		Version:  4,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(inner),
		TTL:      64,
		Protocol: protocolICMP,
		Src:      net.IPv4(192, 0, 2, 1),
		Dst:      net.IPv4(192, 0, 2, 2),
	}).Marshal()
	require.NoError(err)

	echo, ok := invokingEcho(protocolICMP, append(hdr, inner...))
	require.True(ok)
	assert.Equal(42, echo.Seq)
	assert.Equal(7, echo.ID)

	// truncated payloads must not blow up the receiver
	_, ok = invokingEcho(protocolICMP, hdr[:8])
	assert.False(ok)
	_, ok = invokingEcho(protocolICMP, nil)
	assert.False(ok)
}

func TestSetPayloadSize(t *testing.T) {
	assert := assert.New(t)

	p := &Pinger{requests: make(map[uint16]*request)}
	p.SetPayloadSize(128)
	assert.Len(p.payload, 128)

	p.SetPayloadSize(0)
	assert.Len(p.payload, 0)
}
