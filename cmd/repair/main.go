package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/postsmith-hq/postsmith/internal/config"
	"github.com/postsmith-hq/postsmith/internal/enrich"
	"github.com/postsmith-hq/postsmith/internal/logger"
	"github.com/postsmith-hq/postsmith/internal/post"
)

// repairMinBodyLen is the floor below which an existing body gets
// regenerated; pruneMinBodyLen is the floor below which a post is junk.
const (
	repairMinBodyLen = 60
	pruneMinBodyLen  = 140
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "repair:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "postsmith.yaml", "path to the config file")
	since := flag.String("since", "", "only touch posts dated on or after YYYY-MM-DD")
	until := flag.String("until", "", "only touch posts dated on or before YYYY-MM-DD")
	scanDays := flag.Int("days", 30, "only touch posts from the last N days (0 = all)")
	prune := flag.Bool("prune", false, "remove unrepairable posts instead of patching bodies")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	expander := enrich.New(cfg.MinBodyLen, cfg.PaywallPhrases)
	repairer := post.NewRepairer(cfg.PostsDir, expander, log)

	if *prune {
		stats, err := repairer.Prune(post.PruneOptions{
			MinBodyLen: pruneMinBodyLen,
			Blacklist:  cfg.BlacklistPhrases,
			Paywall:    cfg.PaywallPhrases,
		})
		if err != nil {
			return err
		}
		log.InfoObj("prune pass complete", "prune_summary", map[string]any{
			"checked": stats.Checked,
			"removed": stats.Removed,
		})
		return nil
	}

	opts := post.RepairOptions{
		ScanDays:   *scanDays,
		MinBodyLen: repairMinBodyLen,
	}
	if opts.Since, err = parseDate(*since); err != nil {
		return fmt.Errorf("parse -since: %w", err)
	}
	if opts.Until, err = parseDate(*until); err != nil {
		return fmt.Errorf("parse -until: %w", err)
	}

	stats, err := repairer.Repair(opts)
	if err != nil {
		return err
	}
	log.InfoObj("repair pass complete", "repair_summary", map[string]any{
		"checked":  stats.Checked,
		"repaired": stats.Repaired,
	})
	return nil
}

// parseDate reads a YYYY-MM-DD flag value; empty means unbounded.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}
