package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/postsmith-hq/postsmith/internal/config"
	"github.com/postsmith-hq/postsmith/internal/dedup"
	"github.com/postsmith-hq/postsmith/internal/enrich"
	"github.com/postsmith-hq/postsmith/internal/filter"
	"github.com/postsmith-hq/postsmith/internal/images"
	"github.com/postsmith-hq/postsmith/internal/logger"
	"github.com/postsmith-hq/postsmith/internal/normalize"
	"github.com/postsmith-hq/postsmith/internal/pipeline"
	"github.com/postsmith-hq/postsmith/internal/post"
	"github.com/postsmith-hq/postsmith/pkg/fetch"
	"github.com/postsmith-hq/postsmith/pkg/httpclient"
	"github.com/postsmith-hq/postsmith/pkg/publishers"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "postsmith:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "postsmith.yaml", "path to the config file")
	flag.Parse()

	// Missing .env is fine; real deployments pass env directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srcReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	var pubs []publishers.Publisher
	if cfg.PublishersFile != "" {
		pubReg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			return fmt.Errorf("load publishers: %w", err)
		}
		pubs, err = publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubReg.Enabled(), log)
		if err != nil {
			return fmt.Errorf("build publishers: %w", err)
		}
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)

	seen, err := dedup.Open(cfg.SeenDBPath, cfg.RetentionWindow, log)
	if err != nil {
		return fmt.Errorf("open seen-set: %w", err)
	}
	defer seen.Close()

	records, err := pipeline.Harvest(ctx, srcReg, fetch.DefaultRegistry(client), log)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	p := pipeline.New(pipeline.Deps{
		Normalizer: normalize.New(),
		Filter: filter.New(filter.Options{
			MinTitleLen:   cfg.MinTitleLen,
			MinExcerptLen: cfg.MinExcerptLen,
			Relevance:     cfg.RelevanceKeywords,
			Paywall:       cfg.PaywallPhrases,
			Blacklist:     cfg.BlacklistPhrases,
			Freshness:     cfg.FreshnessWindow,
		}),
		Seen:     seen,
		Expander: enrich.New(cfg.MinBodyLen, cfg.PaywallPhrases),
		Images: images.New(client, log, images.Options{
			AssetsDir:     cfg.AssetsDir,
			HeroDir:       cfg.HeroDir,
			Topics:        cfg.Topics,
			GenericHeroes: cfg.GenericHeroes,
			FallbackHero:  cfg.FallbackHero,
			MaxImageBytes: cfg.MaxImageBytes,
		}),
		Writer:     post.NewWriter(cfg.PostsDir, log),
		Publishers: pubs,
		Log:        log,
		MaxPosts:   cfg.MaxPosts,
	})

	if _, err := p.Run(ctx, records); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
