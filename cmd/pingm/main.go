// Command pingm pings many hosts at once and draws their response
// history on a single terminal board.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brsh/pingm"
	"github.com/brsh/pingm/config"
	"github.com/brsh/pingm/probe"
	"github.com/brsh/pingm/ui"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFlag   string
	countFlag    int
	intervalFlag time.Duration
	minDelayFlag time.Duration
	sizeFlag     uint16
	markFlag     uint
	bind4Flag    string
	bind6Flag    string
)

var rootCmd = &cobra.Command{
	Use:   "pingm [flags] host [host ...]",
	Short: "Ping many hosts at once on a single terminal board",
	Long: `pingm probes every host once per round and draws one row per host:
the latest round trip time plus one symbol per past round, newest on
the right. The board updates in place; press any key to leave it and
get a per-host summary.

Hosts come from the arguments, from stdin (one per line, # comments)
when piped or named as "-", or from the settings file.

Examples:
  pingm router 192.168.1.1 vpn.example.com
  cat hosts.txt | pingm
  pingm -n 40 -i 2s gateway`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	f := rootCmd.Flags()
	f.StringVarP(&configFlag, "config", "c", "", "settings file (default: "+config.DefaultPath()+")")
	f.IntVarP(&countFlag, "count", "n", 0, "response cells per host (0 fits the terminal width)")
	f.DurationVarP(&intervalFlag, "interval", "i", time.Second, "target delay between rounds")
	f.DurationVar(&minDelayFlag, "min-delay", 250*time.Millisecond, "smallest pause between rounds")
	f.Uint16Var(&sizeFlag, "size", probe.DefaultPayloadSize, "echo payload size in bytes")
	f.UintVar(&markFlag, "mark", 0, "SO_MARK for probe packets (Linux, needs CAP_NET_ADMIN)")
	f.StringVar(&bind4Flag, "bind4", "0.0.0.0", "IPv4 bind address (empty disables IPv4)")
	f.StringVar(&bind6Flag, "bind6", "::", "IPv6 bind address (empty disables IPv6)")
}

// loadConfig merges the settings file with the command line; explicitly
// set flags win over the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFlag != "" {
		cfg, err = config.Load(configFlag)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("count") {
		cfg.History = countFlag
	}
	if f.Changed("interval") {
		cfg.Interval.Duration = intervalFlag
	}
	if f.Changed("min-delay") {
		cfg.MinDelay.Duration = minDelayFlag
	}
	if f.Changed("size") {
		cfg.PayloadSize = sizeFlag
	}
	if f.Changed("mark") {
		cfg.Mark = markFlag
	}
	if f.Changed("bind4") {
		cfg.Bind4 = bind4Flag
	}
	if f.Changed("bind6") {
		cfg.Bind6 = bind6Flag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	hosts, err := gatherHosts(args, cfg.Hosts)
	if err != nil {
		return err
	}

	// Keep stray log output off the board; Replay prints it once the
	// terminal is restored.
	trap := trapLogs(20)
	defer trap.Replay(os.Stderr)

	pinger, err := probe.New(cfg.Bind4, cfg.Bind6)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("opening ICMP sockets: %w (needs root, CAP_NET_RAW, or a net.ipv4.ping_group_range covering this user)", err)
		}
		return fmt.Errorf("opening ICMP sockets: %w", err)
	}
	defer pinger.Close()

	if !pinger.Privileged() {
		fmt.Println("note: raw sockets not permitted, using unprivileged ICMP")
	}

	if cfg.PayloadSize != probe.DefaultPayloadSize {
		pinger.SetPayloadSize(cfg.PayloadSize)
	}
	if cfg.Mark != 0 {
		if err := pinger.SetMark(cfg.Mark); err != nil {
			return fmt.Errorf("marking probe packets: %w", err)
		}
	}

	engine := pingm.New(pingm.Config{
		Prober:   pinger,
		Resolver: pingm.NetResolver{},
		Terminal: ui.NewDashboard(),
		Hosts:    hosts,
		Interval: cfg.Interval.Duration,
		MinDelay: cfg.MinDelay.Duration,
		History:  cfg.History,
	})
	return engine.Run(cmd.Context())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pingm:", err)
		os.Exit(1)
	}
}
