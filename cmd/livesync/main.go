// livesync subscribes to live data sources and streams updates to the
// console.
//
// Usage:
//
//	livesync --config configs/livesync.yaml --source metrics/cpu --source metrics/mem
//	livesync --url ws://localhost:8080/stream --source metrics/cpu --transform "rate()"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glassdash/livesync/internal/config"
	"github.com/glassdash/livesync/internal/stream"
	"github.com/glassdash/livesync/internal/subscription"
	"github.com/glassdash/livesync/internal/transport"
	"github.com/glassdash/livesync/internal/version"
)

type sourceList []string

func (s *sourceList) String() string { return fmt.Sprint(*s) }

func (s *sourceList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// printer writes stream events to stdout.
type printer struct {
	logger *slog.Logger
}

func (p *printer) OnData(id string, payload json.RawMessage) {
	fmt.Printf("%s  %s  %s\n", time.Now().Format(time.RFC3339), id, payload)
}

func (p *printer) OnError(id, message string) {
	p.logger.Error("stream error", "id", id, "message", message)
}

func (p *printer) OnStateChange(state stream.ConnectionState) {
	p.logger.Info("connection state", "state", state)
}

func main() {
	var sources sourceList
	configPath := flag.String("config", "", "path to config file")
	url := flag.String("url", "", "WebSocket URL (overrides config)")
	transform := flag.String("transform", "", "transform expression applied to every source")
	interval := flag.Duration("interval", 0, "requested refresh interval")
	verbose := flag.Bool("verbose", false, "debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Var(&sources, "source", "data source path (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Println("livesync", version.String())
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath, *url)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if len(sources) == 0 {
		logger.Error("at least one --source is required")
		os.Exit(1)
	}

	logger.Info("starting livesync",
		"version", version.String(),
		"url", cfg.Stream.URL,
		"sources", len(sources),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	ds := stream.New(cfg.Reconnect.Policy(),
		stream.WithLogger(logger),
		stream.WithObserver(&printer{logger: logger}),
		stream.WithRateLimit(cfg.RateLimit.MaxMessages, cfg.RateLimit.Window),
	)

	for _, source := range sources {
		sub := subscription.New(source)
		if *transform != "" {
			sub = sub.WithTransform(*transform)
		}
		if *interval > 0 {
			sub = sub.WithInterval(*interval)
		}
		id := ds.Subscribe(sub)
		logger.Info("subscribed", "id", id, "source", source)
	}

	session := transport.NewSession(transport.SessionConfig{
		URL:               cfg.Stream.URL,
		HeartbeatInterval: cfg.Stream.HeartbeatInterval,
		FlushInterval:     cfg.Stream.FlushInterval,
		WriteTimeout:      cfg.Stream.WriteTimeout,
		StaleTimeout:      cfg.Stream.StaleTimeout,
		BufferSize:        cfg.Stream.BufferSize,
	}, ds, logger)

	if err := session.Start(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := session.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func loadConfig(path, url string) (*config.Config, error) {
	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	if url != "" {
		cfg.Stream.URL = url
	}

	// Flags may fill gaps the file left, so defaults and validation
	// run after the merge.
	if err := config.Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
