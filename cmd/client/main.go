package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"

	"github.com/QYUbit/Tickline/pkg/client"
	"github.com/QYUbit/Tickline/pkg/client/term"
	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	slogadapter "github.com/QYUbit/Tickline/pkg/tlog/slog_adapter"
	"github.com/QYUbit/Tickline/pkg/transport"
	"github.com/QYUbit/Tickline/pkg/transport/netsim"
	quictransport "github.com/QYUbit/Tickline/pkg/transport/quic"
	"github.com/QYUbit/Tickline/pkg/transport/udp"
)

type options struct {
	addr      string
	port      int
	transport string
	fps       int
	logFile   string
	logLevel  string
	profile   string
	netsim    netsim.Config
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.addr, "addr", "", "server host prefilled on the address screen")
	flag.IntVar(&o.port, "port", protocol.DefaultPort, "server port used when the address has none")
	flag.StringVar(&o.transport, "transport", "udp", "datagram transport: udp or quic")
	flag.IntVar(&o.fps, "fps", client.DefaultFPS, "frames per second")
	flag.StringVar(&o.logFile, "log-file", "tickline-client.log", "log destination, the terminal is used for the game")
	flag.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&o.profile, "profile", "", "write a cpu or mem profile to the working directory")
	flag.Float64Var(&o.netsim.PacketLoss, "packet_loss", 0, "probability of dropping an outbound datagram")
	flag.Float64Var(&o.netsim.PacketDuplication, "packet_duplication", 0, "probability of duplicating an outbound datagram")
	flag.DurationVar(&o.netsim.Ping, "ping", 0, "added outbound latency")
	flag.DurationVar(&o.netsim.Jitter, "jitter", 0, "random latency variation")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()

	level, err := tlog.ParseLevel(o.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	logger := slogadapter.New(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))

	switch o.profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("client failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dialer(o options, logger *slogadapter.Adapter) client.Dialer {
	return func(ctx context.Context, addr string) (transport.PacketConn, error) {
		var (
			conn transport.PacketConn
			err  error
		)
		switch o.transport {
		case "udp":
			conn, err = udp.Dial(addr, logger.With("component", "transport"))
		case "quic":
			conn, err = quictransport.Dial(ctx, addr, quictransport.ClientTLSConfig(), logger.With("component", "transport"))
		default:
			err = fmt.Errorf("unknown transport %q", o.transport)
		}
		if err != nil {
			return nil, err
		}

		if o.netsim.Enabled() {
			conn = netsim.Wrap(conn, o.netsim, netsim.WithLogger(logger.With("component", "netsim")))
		}
		return conn, nil
	}
}

func run(ctx context.Context, o options, logger *slogadapter.Adapter) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	input := term.NewInput()
	go term.PollEvents(screen, input)

	c, err := client.New(client.Config{
		Dial:     dialer(o, logger),
		Input:    input,
		Renderer: term.NewRenderer(screen),
		Logger:   logger.With("component", "client"),
		Address:  o.addr,
		Port:     o.port,
		FPS:      o.fps,
	})
	if err != nil {
		return err
	}

	return c.Run(ctx)
}
