package pingm

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brsh/pingm/board"
)

type proberFunc func(ctx context.Context, addr *net.IPAddr) (time.Duration, error)

func (f proberFunc) Probe(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
	return f(ctx, addr)
}

type resolverFunc func(ctx context.Context, host string) (*net.IPAddr, error)

func (f resolverFunc) Resolve(ctx context.Context, host string) (*net.IPAddr, error) {
	return f(ctx, host)
}

var resolveLiteral resolverFunc = func(ctx context.Context, host string) (*net.IPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return &net.IPAddr{IP: ip}, nil
	}
	return nil, fmt.Errorf("lookup %s: no such host", host)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// fakeTerminal records engine calls and can stop the run after a set
// number of rendered rounds.
type fakeTerminal struct {
	openErr   error
	capacity  int
	stopAfter int

	opened  bool
	closed  bool
	layouts int
	renders int
	hosts   []*board.Host

	stop     chan struct{}
	stopOnce sync.Once
}

func newFakeTerminal(capacity, stopAfter int) *fakeTerminal {
	return &fakeTerminal{
		capacity:  capacity,
		stopAfter: stopAfter,
		stop:      make(chan struct{}),
	}
}

func (ft *fakeTerminal) Open() error {
	if ft.openErr != nil {
		return ft.openErr
	}
	ft.opened = true
	return nil
}

func (ft *fakeTerminal) HistoryCapacity(nameWidth int) int { return ft.capacity }

func (ft *fakeTerminal) Layout(hosts []*board.Host) {
	ft.layouts++
	ft.hosts = hosts
}

func (ft *fakeTerminal) Render(hosts []*board.Host) {
	ft.renders++
	if ft.stopAfter > 0 && ft.renders >= ft.stopAfter {
		ft.requestStop()
	}
}

func (ft *fakeTerminal) requestStop() {
	ft.stopOnce.Do(func() { close(ft.stop) })
}

func (ft *fakeTerminal) Stopped() <-chan struct{} { return ft.stop }

func (ft *fakeTerminal) Close() { ft.closed = true }

// fastOpts makes test runs finish in milliseconds.
func fastOpts(cfg *Config) {
	cfg.Interval = time.Millisecond
	cfg.MinDelay = time.Millisecond
}

func TestRunNoHosts(t *testing.T) {
	e := New(Config{Out: &bytes.Buffer{}})
	assert.ErrorIs(t, e.Run(context.Background()), errNoHosts)
}

func TestRunDisplayFailure(t *testing.T) {
	assert := assert.New(t)

	ft := newFakeTerminal(10, 0)
	ft.openErr = fmt.Errorf("not a terminal")

	out := &bytes.Buffer{}
	cfg := Config{
		Prober: proberFunc(func(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
			return time.Millisecond, nil
		}),
		Resolver: resolveLiteral,
		Terminal: ft,
		Hosts:    []string{"192.0.2.1"},
		Out:      out,
	}

	err := New(cfg).Run(context.Background())
	assert.ErrorContains(err, "cannot start display")
	assert.ErrorContains(err, "not a terminal")

	// the host report is printed before the display starts
	assert.Contains(out.String(), "192.0.2.1")
	assert.Zero(ft.renders)
	assert.False(ft.closed)
}

func TestRunRoundsAndSummary(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ft := newFakeTerminal(10, 3)
	out := &bytes.Buffer{}

	cfg := Config{
		Prober: proberFunc(func(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
			if addr.IP.Equal(net.IPv4(192, 0, 2, 2)) {
				return 0, timeoutErr{}
			}
			return 10 * time.Millisecond, nil
		}),
		Resolver: resolveLiteral,
		Terminal: ft,
		Hosts:    []string{"192.0.2.1", "192.0.2.2"},
		Out:      out,
	}
	fastOpts(&cfg)

	require.NoError(New(cfg).Run(context.Background()))

	assert.True(ft.opened)
	assert.True(ft.closed)
	assert.Equal(1, ft.layouts)
	assert.Equal(3, ft.renders)

	require.Len(ft.hosts, 2)
	for _, h := range ft.hosts {
		assert.Equal(3, h.History.Len())
	}

	last, ok := ft.hosts[0].Last()
	require.True(ok)
	assert.Equal(board.Reply, last.Outcome)
	assert.Equal(10*time.Millisecond, last.RTT)

	last, _ = ft.hosts[1].Last()
	assert.Equal(board.Timeout, last.Outcome)

	report := out.String()
	assert.Contains(report, "192.0.2.1")
	assert.Contains(report, "3 rounds, 0% loss")
	assert.Contains(report, "10.00ms")
	assert.Contains(report, "3 rounds, 100% loss")
}

func TestRunKeepsUnresolvedHosts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ft := newFakeTerminal(10, 2)
	out := &bytes.Buffer{}

	var probedNil int32
	cfg := Config{
		Prober: proberFunc(func(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
			if addr == nil {
				atomic.AddInt32(&probedNil, 1)
			}
			return 5 * time.Millisecond, nil
		}),
		Resolver: resolveLiteral,
		Terminal: ft,
		Hosts:    []string{"192.0.2.1", "bogus.invalid"},
		Out:      out,
	}
	fastOpts(&cfg)

	require.NoError(New(cfg).Run(context.Background()))

	assert.Contains(out.String(), "unresolved")
	assert.Contains(out.String(), "no such host")

	require.Len(ft.hosts, 2)
	assert.False(ft.hosts[1].Resolved())
	assert.Equal(2, ft.hosts[1].History.Len())
	for i := 0; i < ft.hosts[1].History.Len(); i++ {
		assert.Equal(board.Unreachable, ft.hosts[1].History.At(i).Outcome)
	}

	// unresolved hosts are never handed to the prober
	assert.Zero(atomic.LoadInt32(&probedNil))

	// and they still show up in the summary, as pure loss
	assert.Contains(out.String(), "2 rounds, 100% loss")
}

func TestRunHistoryCapacity(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	prober := proberFunc(func(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
		return time.Millisecond, nil
	})

	// derived from the terminal by default
	ft := newFakeTerminal(50, 1)
	cfg := Config{
		Prober:   prober,
		Resolver: resolveLiteral,
		Terminal: ft,
		Hosts:    []string{"192.0.2.1"},
		Out:      &bytes.Buffer{},
	}
	fastOpts(&cfg)
	require.NoError(New(cfg).Run(context.Background()))
	assert.Equal(50, ft.hosts[0].History.Cap())

	// an explicit override wins over the terminal width
	ft = newFakeTerminal(50, 1)
	cfg.Terminal = ft
	cfg.History = 7
	require.NoError(New(cfg).Run(context.Background()))
	assert.Equal(7, ft.hosts[0].History.Cap())
}

func TestRunStopMidRound(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ft := newFakeTerminal(10, 0)
	started := make(chan struct{})
	var startOnce sync.Once

	cfg := Config{
		Prober: proberFunc(func(ctx context.Context, addr *net.IPAddr) (time.Duration, error) {
			startOnce.Do(func() { close(started) })
			time.Sleep(30 * time.Millisecond)
			return time.Millisecond, nil
		}),
		Resolver: resolveLiteral,
		Terminal: ft,
		Hosts:    []string{"192.0.2.1"},
		Out:      &bytes.Buffer{},
	}
	fastOpts(&cfg)

	go func() {
		<-started
		ft.requestStop()
	}()

	require.NoError(New(cfg).Run(context.Background()))

	// the interrupted round still completed and was drawn
	assert.Equal(1, ft.renders)
	assert.Equal(1, ft.hosts[0].History.Len())
}

func TestNetResolverLiterals(t *testing.T) {
	assert := assert.New(t)

	addr, err := NetResolver{}.Resolve(context.Background(), "127.0.0.1")
	assert.NoError(err)
	assert.True(addr.IP.Equal(net.IPv4(127, 0, 0, 1)))

	addr, err = NetResolver{}.Resolve(context.Background(), "::1")
	assert.NoError(err)
	assert.True(addr.IP.Equal(net.ParseIP("::1")))
}
