// Package pingm drives the ping board: it resolves the host list once,
// owns the terminal for the run, and repeats probing rounds until the
// operator stops it.
package pingm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
	"unicode/utf8"

	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/brsh/pingm/board"
)

// Terminal is the display the engine draws on. Open is called exactly
// once before the first round; Close runs on every exit path after a
// successful Open.
type Terminal interface {
	Open() error
	HistoryCapacity(nameWidth int) int
	Layout(hosts []*board.Host)
	Render(hosts []*board.Host)
	Stopped() <-chan struct{}
	Close()
}

// Config assembles an engine. Prober, Resolver and Terminal are
// required; zero values elsewhere take defaults.
type Config struct {
	Prober   board.Prober
	Resolver Resolver
	Terminal Terminal
	Hosts    []string

	Interval time.Duration // round cadence target; 0 means board.DefaultInterval
	MinDelay time.Duration // pause floor between rounds; 0 means board.DefaultMinDelay
	History  int           // fixed history length; 0 derives it from the terminal width

	Out io.Writer // startup report and run summary; nil means os.Stdout
}

type Engine struct {
	cfg       Config
	hosts     []*board.Host
	nameWidth int
}

func New(cfg Config) *Engine {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Engine{cfg: cfg}
}

var errNoHosts = errors.New("no hosts to probe")

// Run executes the full lifecycle: resolve and report every host, draw
// the board until a keypress or signal stops it, then print the run
// summary. A nil return means a normal operator stop; an error means
// startup failed and nothing was drawn.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.cfg.Hosts) == 0 {
		return errNoHosts
	}

	targets := e.resolveAll(ctx)

	if err := e.display(ctx, targets); err != nil {
		return err
	}

	e.summarize()
	return nil
}

// resolveProgressAt is the host count from which resolution shows a
// progress bar; below that the report appears faster than the bar could
// draw.
const resolveProgressAt = 10

// resolveAll looks up every host once and prints one report line per
// host. Hosts that fail resolution are reported but kept; their board
// row shows the failure instead of silently disappearing.
func (e *Engine) resolveAll(ctx context.Context) []*net.IPAddr {
	names := e.cfg.Hosts
	e.nameWidth = longestName(names)

	var bar *pb.ProgressBar
	if len(names) >= resolveProgressAt {
		bar = pb.New(len(names))
		bar.Output = e.cfg.Out
		bar.ShowTimeLeft = false
		bar.Start()
	}

	targets := make([]*net.IPAddr, len(names))
	report := make([]string, len(names))
	for i, name := range names {
		addr, err := e.cfg.Resolver.Resolve(ctx, name)
		if err != nil {
			report[i] = fmt.Sprintf("%-*s  unresolved: %v", e.nameWidth, name, err)
		} else {
			targets[i] = addr
			report[i] = fmt.Sprintf("%-*s  %s", e.nameWidth, name, addr.IP)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	for _, line := range report {
		fmt.Fprintln(e.cfg.Out, line)
	}
	return targets
}

func (e *Engine) display(ctx context.Context, targets []*net.IPAddr) error {
	term := e.cfg.Terminal
	if err := term.Open(); err != nil {
		return fmt.Errorf("cannot start display: %w", err)
	}
	defer term.Close()

	capacity := e.cfg.History
	if capacity <= 0 {
		capacity = term.HistoryCapacity(e.nameWidth)
	}

	e.hosts = make([]*board.Host, len(e.cfg.Hosts))
	for i, name := range e.cfg.Hosts {
		e.hosts[i] = board.NewHost(name, targets[i], capacity)
	}
	term.Layout(e.hosts)

	sched := &board.Scheduler{Prober: e.cfg.Prober, Hosts: e.hosts}
	stop := term.Stopped()

	for {
		// Stop requests are honored at round boundaries only; a round
		// in flight completes and shows its results first.
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		stats := sched.RunRound(ctx)
		term.Render(e.hosts)

		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return nil
		case <-time.After(board.Delay(stats, e.cfg.Interval, e.cfg.MinDelay)):
		}
	}
}

// summarize prints the per-host counters for the whole run, once the
// terminal is ordinary again.
func (e *Engine) summarize() {
	if len(e.hosts) == 0 || e.hosts[0].Summarize().Rounds == 0 {
		return
	}

	fmt.Fprintln(e.cfg.Out)
	for _, h := range e.hosts {
		s := h.Summarize()
		if s.Replies == 0 {
			fmt.Fprintf(e.cfg.Out, "%-*s  %d rounds, 100%% loss\n",
				e.nameWidth, s.Name, s.Rounds)
			continue
		}
		fmt.Fprintf(e.cfg.Out, "%-*s  %d rounds, %.0f%% loss, rtt min/avg/max = %s/%s/%s\n",
			e.nameWidth, s.Name, s.Rounds, s.LossPercent(), ts(s.Min), ts(s.Avg), ts(s.Max))
	}
}

// ts formats a round trip time, sub-second values in milliseconds with
// two decimals.
func ts(dur time.Duration) string {
	if dur < time.Second {
		return fmt.Sprintf("%0.2fms", float64(dur.Nanoseconds())/float64(time.Millisecond))
	}
	return dur.String()
}

func longestName(names []string) int {
	width := 0
	for _, name := range names {
		if n := utf8.RuneCountInString(name); n > width {
			width = n
		}
	}
	return width
}
