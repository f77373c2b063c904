package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/gburgyan/go-timing"
	"github.com/rs/zerolog/log"

	"github.com/gburgyan/go-resgroup"
	"github.com/gburgyan/go-resgroup/internal/broker"
	"github.com/gburgyan/go-resgroup/internal/config"
	"github.com/gburgyan/go-resgroup/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.LoadDemoConfig(*configPath)
	if err != nil {
		observability.InitLogger("resgroup-demo", "info")
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := observability.InitLogger("resgroup-demo", cfg.LogLevel)
	log.Info().Str("path", *configPath).Str("broker", cfg.Broker).Str("queue", cfg.Queue).Msg("loaded config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var root *timing.Context
	if cfg.Timing {
		resgroup.EnableTiming = resgroup.TimingEntries
		root = timing.Root(ctx)
		ctx = root
	}

	b := broker.New(cfg.Broker, logger)
	applyFailures(b, cfg)

	res, err := runUnitOfWork(ctx, b, cfg)
	if err != nil {
		log.Error().Err(err).Msg("unit of work failed")
	} else {
		log.Info().Int("sent", res.Sent).Int("received", res.Received).Msg("unit of work finished")
		log.Debug().Msg(res.Status)
	}

	log.Info().
		Int("open_handles", b.OpenTotal()).
		Int("suppressed_release_errors", len(b.CloseErrors())).
		Strs("release_order", b.CloseOrder()).
		Msg("resources released")

	if root != nil {
		log.Info().Msg("timing:\n" + root.String())
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
