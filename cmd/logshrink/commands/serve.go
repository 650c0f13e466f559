package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/brask/logshrink/internal/config"
	"github.com/brask/logshrink/internal/gossip"
	"github.com/brask/logshrink/internal/ingest"
	"github.com/brask/logshrink/internal/logshrink"
	"github.com/brask/logshrink/internal/supervisor"
	"github.com/brask/logshrink/internal/uiboundary"
)

var (
	serveUDPAddr       string
	serveTCPAddr       string
	serveBEEPAddr      string
	serveUIAddr        string
	serveOutput        string
	serveSealThreshold int
	serveSeedPatterns  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingest, discovery and archival pipeline",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveUDPAddr, "udp-addr", "0.0.0.0:5140", "UDP syslog listener address")
	serveCmd.Flags().StringVar(&serveTCPAddr, "tcp-addr", "0.0.0.0:5141", "TCP syslog listener address")
	serveCmd.Flags().StringVar(&serveBEEPAddr, "beep-addr", "", "BEEP (RFC 3195) stub listener address; empty disables it")
	serveCmd.Flags().StringVar(&serveUIAddr, "ui-addr", "0.0.0.0:8088", "live-tail UI/SSE boundary address")
	serveCmd.Flags().StringVar(&serveOutput, "output", "./chunks", "directory sealed chunk archives are written to")
	serveCmd.Flags().IntVar(&serveSealThreshold, "seal-threshold", 10, "number of raw events that triggers a seal and flush")
	serveCmd.Flags().StringVar(&serveSeedPatterns, "seed-patterns", "", "optional YAML file of patterns to pre-seed the template table with")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	if err := os.MkdirAll(serveOutput, 0o755); err != nil {
		return errIOOrFormat("creating output directory: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := ingest.NewQueue()
	broadcaster := gossip.NewBroadcaster(logger)
	hub := uiboundary.NewHub()
	nodeID := gossip.NewNodeID()

	sv := supervisor.New(supervisor.Config{
		SealThreshold: serveSealThreshold,
		OutputDir:     serveOutput,
	}, queue, broadcaster, logger)

	sv.OnEvent(func(event logshrink.ParsedEvent) {
		hostname := "-"
		if event.Hostname != nil {
			hostname = *event.Hostname
		}
		hub.Publish(uiboundary.Event{
			Hostname:  hostname,
			Message:   event.Message,
			Timestamp: time.Now().UnixMilli(),
		})
	})

	var seedWatcher *config.SeedPatternsWatcher
	if serveSeedPatterns == "" {
		for _, p := range config.DefaultSeedPatterns().Patterns {
			sv.ImportPattern(p.Pattern)
		}
	} else {
		var err error
		seedWatcher, err = config.NewSeedPatternsWatcher(config.WatcherConfig{
			FilePath: serveSeedPatterns,
		}, func(file *config.SeedPatternsFile) error {
			for _, p := range file.Patterns {
				sv.ImportPatternAsync(p.Pattern)
			}
			return nil
		}, logger)
		if err != nil {
			return errUserError("configuring seed patterns watcher: %v", err)
		}
		if err := seedWatcher.Start(ctx); err != nil {
			return errUserError("loading seed patterns: %v", err)
		}
		defer seedWatcher.Stop()
	}

	uiServer := uiboundary.NewServer(serveUIAddr, hub, logger)

	ingestServer := &ingest.Server{
		UDPAddr:  serveUDPAddr,
		TCPAddr:  serveTCPAddr,
		BEEPAddr: serveBEEPAddr,
		Queue:    queue,
		Logger:   logger,
	}

	logger.Info("logshrink node starting", "node_id", string(nodeID))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ingestServer.Run(gctx) })
	g.Go(func() error { return sv.Run(gctx) })
	g.Go(func() error {
		if err := uiServer.Start(); err != nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return uiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return errIOOrFormat("serve: %v", err)
	}
	return nil
}
