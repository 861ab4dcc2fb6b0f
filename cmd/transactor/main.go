// Command transactor runs a counter transactor and hammers it with concurrent
// clients, each incrementing the counter in its own sessions.
//
// Prometheus metrics are served when -metrics-addr is set:
//
//	transactor -clients 8 -increments 100 -metrics-addr :2121
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	promadapter "github.com/mikea/transactor/adapters/prometheus"
	"github.com/mikea/transactor/config"
	"github.com/mikea/transactor/internal/logging"
	"github.com/mikea/transactor/tractor"
	"github.com/mikea/transactor/transactor"
)

const maxAttempts = 3

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on")
	clients := flag.Int("clients", 8, "number of concurrent clients")
	increments := flag.Int("increments", 100, "increments per client")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	log := logging.New("transactor", cfg.Log, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, log, cfg, *metricsAddr, *clients, *increments); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, log zerolog.Logger, cfg config.Config, metricsAddr string, clients, increments int) error {
	if clients < 1 || increments < 0 {
		return fmt.Errorf("need at least one client and a non-negative increment count")
	}
	if need := bufferNeeded(clients); need > cfg.BufferCapacity {
		return fmt.Errorf("%d clients may defer %d begin requests, buffer holds %d", clients, need, cfg.BufferCapacity)
	}

	reg := prometheus.NewRegistry()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			log.Info().Str("addr", metricsAddr).Msg("metrics server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer server.Shutdown(context.Background())
	}

	system := tractor.Start(
		transactor.New(transactor.Config[int]{
			SessionTimeout: cfg.SessionTimeout,
			BufferCapacity: cfg.BufferCapacity,
			Metrics:        promadapter.NewTransactorMetrics(reg, "counter"),
		}),
		tractor.WithLogger(log),
		tractor.WithMetrics(promadapter.NewActorMetrics(reg)),
		tractor.WithMailboxSize(cfg.MailboxSize),
	)
	defer func() {
		system.Terminate()
		system.Wait()
	}()
	client := transactor.NewClient[int](system.Root())

	// waiting for a session may take every other client's full session
	wait := time.Duration(clients+1) * cfg.SessionTimeout

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < clients; c++ {
		c := c
		g.Go(func() error {
			for i := 0; i < increments; i++ {
				id := int64(c*increments + i)
				if err := increment(gctx, client, id, wait); err != nil {
					return fmt.Errorf("client %d: %w", c, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	value, err := read(ctx, client, wait)
	if err != nil {
		return err
	}
	log.Info().
		Int("value", value).
		Int("expected", clients*increments).
		Dur("elapsed", time.Since(start)).
		Msg("done")
	return nil
}

// bufferNeeded bounds how many Begin requests may wait at once. A client
// whose Begin timed out retries while the abandoned request is still queued,
// so each client can have up to maxAttempts requests deferred; one request
// overall holds the session instead of waiting.
func bufferNeeded(clients int) int {
	return clients*maxAttempts - 1
}

// increment adds one to the counter, retrying in a fresh session when the
// previous one ended before its commit was acknowledged.
func increment(ctx context.Context, client *transactor.Client[int], id int64, wait time.Duration) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = incrementOnce(ctx, client, id, wait); err == nil || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func incrementOnce(ctx context.Context, client *transactor.Client[int], id int64, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	s, err := client.Begin(ctx)
	if err != nil {
		return err
	}
	if err := s.Modify(ctx, id, func(v int) (int, error) { return v + 1, nil }); err != nil {
		s.Rollback()
		return err
	}
	return s.Commit(ctx)
}

func read(ctx context.Context, client *transactor.Client[int], wait time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	s, err := client.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.Rollback()
	return s.Get(ctx)
}
