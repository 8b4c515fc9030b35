package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Zereker/voevent"
)

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "voevent-listen").Logger()
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}

func main() {
	configPath := flag.String("config", "", "TOML config file; the public GCN brokers are used when empty")
	flag.Parse()

	cfg := voevent.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = voevent.LoadConfig(*configPath); err != nil {
			fallback := newLogger("")
			fallback.Fatal().Err(err).Msg("invalid config")
		}
	}

	zl := newLogger(cfg.LogLevel)
	logger := voevent.NewZerologLogger(zl)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	printNotice := func(_ []byte, n *voevent.Notice) error {
		zl.Info().Str("ivorn", n.IVORN).Stringer("notice_type", n.Type).Str("date", n.Date).Msg("notice")
		return nil
	}

	opts := append(cfg.Options(),
		voevent.LoggerOption(logger),
		voevent.MetricsOption(reg, nil),
		voevent.RegistrationOption(cfg.Registration(printNotice)),
		voevent.ExceptionHandlerOption(func(payload []byte, err error) {
			zl.Warn().Err(err).Int("bytes", len(payload)).Msg("unparseable payload")
		}),
	)
	if cfg.ArchiveDir != "" {
		if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
			zl.Fatal().Err(err).Str("dir", cfg.ArchiveDir).Msg("cannot create archive dir")
		}
		opts = append(opts, voevent.RegistrationOption(
			cfg.Registration(voevent.ArchiveHandler(cfg.ArchiveDir, logger))))
	}

	client, err := voevent.NewClient(opts...)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to create client")
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, zl)
		defer srv.Close()
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		zl.Info().Msg("shutting down listener...")
		client.Stop()
	}()

	if err := client.Run(context.Background()); err != nil {
		zl.Error().Err(err).Msg("listener error")
	}
}
