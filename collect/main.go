package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taoufikbo/preprint-empirical/internal/collector"
	"github.com/taoufikbo/preprint-empirical/internal/config"
	"github.com/taoufikbo/preprint-empirical/internal/corpus"
	"github.com/taoufikbo/preprint-empirical/internal/logger"
	"github.com/taoufikbo/preprint-empirical/internal/serpapi"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "collect a small deterministic sample and write it to the sample file")
	sampleSize := flag.Int("sample-size", 20, "number of records to keep in dry-run mode")
	maxPerQuery := flag.Int("max-per-query", 100, "maximum jobs to fetch per country/role query")
	output := flag.String("output", "", "override the output CSV path")
	flag.Parse()

	log := logger.New("collect")

	cfg, err := config.LoadCollector()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	outPath := cfg.OutputPath
	if *dryRun {
		outPath = cfg.SamplePath
	}
	if *output != "" {
		outPath = *output
	}
	store := corpus.NewStore(outPath, log)

	// Surface an unwritable destination before spending any quota.
	if err := store.Prepare(); err != nil {
		log.Error("output path not writable", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	client := serpapi.New(serpapi.Config{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		PageSize:     cfg.PageSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		RequestDelay: cfg.RequestDelay,
		HTTPTimeout:  cfg.HTTPTimeout,
	}, log)

	coll := collector.New(client, log)
	specs := config.QueryMatrix()

	perQuery := *maxPerQuery
	if *dryRun {
		// Dry runs fetch just enough per query to fill the sample.
		perQuery = *sampleSize
		if perQuery < 1 {
			perQuery = 1
		}
		log.Info("dry-run mode, collection is capped and goes to the sample file",
			slog.Int("sample_size", *sampleSize),
			slog.String("path", outPath),
		)
	}

	records, results := coll.Collect(ctx, specs, perQuery)

	ok, empty, failed := collector.Tally(results)
	log.Info("collection finished",
		slog.Int("queries_ok", ok),
		slog.Int("queries_empty", empty),
		slog.Int("queries_failed", failed),
		slog.Int("records", len(records)),
	)

	if len(records) == 0 {
		log.Warn("no records collected, nothing to write")
		return
	}

	if *dryRun {
		records = corpus.Sample(records, *sampleSize)
	}

	total, added, err := store.Merge(records)
	if err != nil {
		log.Error("merge corpus", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("done",
		slog.String("path", store.Path()),
		slog.Int("total_rows", total),
		slog.Int("new_rows", added),
	)
}
