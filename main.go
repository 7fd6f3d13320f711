package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lanis_war_tracker/internal/app"
	"lanis_war_tracker/internal/presenter"
	"lanis_war_tracker/internal/processing"
	"lanis_war_tracker/internal/sheets"
	"lanis_war_tracker/internal/source"
	"lanis_war_tracker/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	// Parse command line flags
	interval := flag.Duration("interval", 20*time.Second, "Interval between collection cycles (e.g., 20s, 1m)")
	runOnce := flag.Bool("once", false, "Run one collection cycle and exit (don't start scheduler)")
	reset := flag.Bool("reset", false, "Clear all stored tracker data and exit")
	flag.Parse()

	log.Info().
		Dur("interval", *interval).
		Bool("run_once", *runOnce).
		Msg("Starting war tracker")

	// Load configuration
	config, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.UpdateInterval = *interval

	ctx := context.Background()

	kv, err := store.Open(config.DatabasePath, config.Location)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.DatabasePath).Msg("Failed to open tracker database")
	}
	defer kv.Close()

	presenters := []processing.Presenter{presenter.NewConsole()}
	if config.SpreadsheetID != "" {
		client, err := sheets.NewClient(ctx, config.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
		presenters = append(presenters, sheets.NewExporter(client, config.SpreadsheetID))
		log.Info().Str("spreadsheet", config.SpreadsheetID).Msg("Sheets export enabled")
	}

	processor := processing.NewProcessor(
		config,
		source.NewFileLogSource(config),
		source.NewFileGuildSource(config),
		kv,
		presenters...,
	)

	if *reset {
		if err := processor.ResetAllData(); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tracker data")
		}
		return
	}

	// Run initial collection. Roster gaps are swept immediately so the first
	// dashboard is attributable.
	log.Info().Msg("Running initial collection cycle")
	result, err := processor.RunCollectionCycle(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Initial collection cycle failed")
	} else if len(result.MissingGuilds) > 0 || len(result.StaleGuilds) > 0 {
		if _, err := processor.CollectMissingGuilds(ctx); err != nil {
			log.Error().Err(err).Msg("Initial roster collection failed")
		}
	}

	if *runOnce {
		log.Info().Msg("Run-once mode: exiting after initial collection")
		return
	}

	scheduler := processing.NewScheduler(processor)
	scheduler.Start(ctx, *interval)

	// Block until interrupted; the scheduler may also halt itself when no
	// roster data exists.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutting down")
	scheduler.Stop()
}
