package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/server"
	"github.com/QYUbit/Tickline/pkg/spectate"
	"github.com/QYUbit/Tickline/pkg/tlog"
	slogadapter "github.com/QYUbit/Tickline/pkg/tlog/slog_adapter"
	"github.com/QYUbit/Tickline/pkg/transport"
	"github.com/QYUbit/Tickline/pkg/transport/netsim"
	quictransport "github.com/QYUbit/Tickline/pkg/transport/quic"
	"github.com/QYUbit/Tickline/pkg/transport/udp"
)

type options struct {
	addr      string
	transport string
	spectate  string
	profile   string
	logLevel  string
	netsim    netsim.Config
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.addr, "addr", net.JoinHostPort("", strconv.Itoa(protocol.DefaultPort)), "listen address")
	flag.StringVar(&o.transport, "transport", "udp", "datagram transport: udp or quic")
	flag.StringVar(&o.spectate, "spectate", "", "http address of the spectator websocket feed, disabled when empty")
	flag.StringVar(&o.profile, "profile", "", "write a cpu or mem profile to the working directory")
	flag.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
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
	logger := slogadapter.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	switch o.profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func listen(ctx context.Context, o options, logger tlog.Logger) (transport.PacketConn, error) {
	switch o.transport {
	case "udp":
		return udp.Listen(o.addr, logger)
	case "quic":
		tlsConf, err := quictransport.GenerateTLSConfig()
		if err != nil {
			return nil, err
		}
		return quictransport.Listen(ctx, o.addr, tlsConf, logger)
	}
	return nil, fmt.Errorf("unknown transport %q", o.transport)
}

func run(ctx context.Context, o options, logger *slogadapter.Adapter) error {
	conn, err := listen(ctx, o, logger.With("component", "transport"))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	if o.netsim.Enabled() {
		logger.Warn("simulating network conditions",
			"packet_loss", o.netsim.PacketLoss,
			"packet_duplication", o.netsim.PacketDuplication,
			"ping", o.netsim.Ping,
			"jitter", o.netsim.Jitter,
		)
		conn = netsim.Wrap(conn, o.netsim, netsim.WithLogger(logger.With("component", "netsim")))
	}

	cfg := server.Config{
		Conn:   conn,
		Logger: logger.With("component", "server"),
	}

	g, ctx := errgroup.WithContext(ctx)

	if o.spectate != "" {
		hub := spectate.NewHub(spectate.Config{Logger: logger.With("component", "spectate")})
		cfg.Observer = hub

		httpServer := &http.Server{
			Addr:              o.spectate,
			Handler:           hub,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("spectator feed listening", "addr", o.spectate)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	g.Go(func() error {
		return srv.Run(ctx)
	})

	return g.Wait()
}
