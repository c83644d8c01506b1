// Package probe sends ICMP echo requests and measures round trip times.
// One Pinger serves any number of concurrent Probe calls; replies are
// matched to their request by sequence number.
package probe

import (
	"errors"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"

	"github.com/digineo/go-logwrap"
	"golang.org/x/net/icmp"
)

const (
	// protocolICMP is the assigned number of ICMP for IPv4.
	protocolICMP = 1

	// protocolICMPv6 is the IPv6 Next Header value for ICMPv6.
	protocolICMPv6 = 58
)

// EchoWait is how long a probe waits for its reply before giving up.
// It matches the stock ping utilities and is deliberately not tunable:
// shorter, user-chosen waits misreport slow-but-alive hosts as lost.
const EchoWait = 5 * time.Second

// DefaultPayloadSize is the number of random bytes appended to each echo
// request, same as the classic ping default.
const DefaultPayloadSize = 56

var (
	log = &logwrap.Instance{}

	// SetLogger allows updating the Logger. For details, see
	// "github.com/digineo/go-logwrap".Instance.SetLogger.
	SetLogger = log.SetLogger

	rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	// sequence number source shared by all probes of this process
	sequence uint32
)

// Pinger owns the ICMP sockets and correlates echo replies with waiting
// probes.
type Pinger struct {
	id         uint16
	privileged bool

	conn4 net.PacketConn
	conn6 net.PacketConn

	mtx      sync.Mutex
	requests map[uint16]*request

	payloadMtx sync.RWMutex
	payload    []byte

	wg sync.WaitGroup
}

// New opens ICMP sockets for both address families and starts the
// receive loops. Raw sockets need elevated privileges; when opening them
// is not permitted, New retries with unprivileged datagram sockets
// (available on Linux via ping_group_range, and on macOS). An empty bind
// address skips that family. Close must be called to release the
// sockets.
func New(bind4, bind6 string) (*Pinger, error) {
	p := &Pinger{
		id:       uint16(os.Getpid()),
		requests: make(map[uint16]*request),
	}
	p.SetPayloadSize(DefaultPayloadSize)

	p.privileged = true
	err := p.open(bind4, bind6)
	if err != nil && errors.Is(err, os.ErrPermission) {
		p.privileged = false
		err = p.open(bind4, bind6)
	}
	if err != nil {
		return nil, err
	}

	if p.conn4 == nil && p.conn6 == nil {
		return nil, errNotBound
	}

	if p.conn4 != nil {
		p.wg.Add(1)
		go p.receiver(protocolICMP, p.conn4)
	}
	if p.conn6 != nil {
		p.wg.Add(1)
		go p.receiver(protocolICMPv6, p.conn6)
	}

	return p, nil
}

func (p *Pinger) open(bind4, bind6 string) error {
	network4, network6 := "ip4:icmp", "ip6:ipv6-icmp"
	if !p.privileged {
		network4, network6 = "udp4", "udp6"
	}

	var err error
	if p.conn4, err = listen(network4, bind4); err != nil {
		return err
	}
	if p.conn6, err = listen(network6, bind6); err != nil {
		if p.conn4 != nil {
			p.conn4.Close()
			p.conn4 = nil
		}
		return err
	}
	return nil
}

// listen opens an ICMP connection, iff the bind address is not empty.
func listen(network, address string) (net.PacketConn, error) {
	if network == "" || address == "" {
		return nil, nil
	}
	return icmp.ListenPacket(network, address)
}

// Privileged reports whether raw sockets are in use, as opposed to the
// unprivileged datagram fallback.
func (p *Pinger) Privileged() bool { return p.privileged }

// SetPayloadSize gives future echo requests a fresh random payload of
// the given size.
func (p *Pinger) SetPayloadSize(size uint16) {
	buf := make([]byte, size)
	if _, err := rng.Read(buf); err != nil {
		log.Errorf("cannot rebuild payload: %v", err)
		return
	}

	p.payloadMtx.Lock()
	p.payload = buf
	p.payloadMtx.Unlock()
}

// Close shuts the sockets down and waits for the receive loops to end.
func (p *Pinger) Close() {
	if p.conn4 != nil {
		p.conn4.Close()
	}
	if p.conn6 != nil {
		p.conn6.Close()
	}
	p.wg.Wait()
}
