package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/match"
	"jobscout-engine/internal/pipeline"
	"jobscout-engine/internal/render"
	"jobscout-engine/internal/report"
	"jobscout-engine/internal/scheduler"
	"jobscout-engine/internal/scrape/util"
	"jobscout-engine/internal/secrets"
	"jobscout-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("JOBSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	cfgPath := flag.String("config", "", "config file (default <data dir>/config.yml, bootstrapped from config/config.yml)")
	envPath := flag.String("env", ".env", "dotenv file loaded before the config")
	setKey := flag.Bool("set-api-key", false, "read the matcher API key from stdin, store it in the OS keychain and exit")
	noReport := flag.Bool("no-report", false, "skip the HTML report after each run")
	flag.Parse()

	if err := config.LoadEnv(*envPath); err != nil {
		log.Fatalf("load %s: %v", *envPath, err)
	}

	userCfgPath := *cfgPath
	if userCfgPath == "" {
		defaultCfgPath := filepath.Join("config", "config.yml")
		p, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
		userCfgPath = p
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	config.OverlayEnv(&cfg)

	if *setKey {
		if err := storeAPIKey(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := config.OverlayPrompts(&cfg, filepath.Dir(userCfgPath)); err != nil {
		log.Fatalf("prompts: %v", err)
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !res.OK() {
		log.Fatalf("config invalid:\n- %s", strings.Join(res.Errors, "\n- "))
	}

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		log.Fatal(err)
	}
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := db.PruneDrops(ctx, time.Now().AddDate(0, 0, -cfg.Pipeline.DropRetentionDays)); err != nil {
		log.Printf("[store] prune drops: %v", err)
	} else if n > 0 {
		log.Printf("[store] pruned %d old drops", n)
	}

	apiKey, err := secrets.APIKey(secrets.KeyringAccount(cfg), cfg.Matcher.APIKeyEnv)
	if err != nil {
		log.Fatal(err)
	}

	browser, err := render.NewPlaywright(render.Options{
		Headless:  *cfg.Browser.Headless,
		Timeout:   time.Duration(cfg.Browser.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Browser.UserAgent,
		Locale:    cfg.Browser.Locale,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer browser.Close()

	fetcher := &util.Fetcher{
		Renderer: browser,
		Limiter:  util.NewHostLimiter(cfg.Browser.RequestsPerSecond, 1),
		Delay:    2 * time.Second,
	}
	sources, err := buildSources(cfg, fetcher)
	if err != nil {
		log.Fatal(err)
	}

	var matchOpts []match.Option
	if rps := cfg.Matcher.RequestsPerSecond; rps > 0 {
		matchOpts = append(matchOpts, match.WithRateLimit(rate.NewLimiter(rate.Limit(rps), 1)))
	}
	matcher := match.New(
		match.NewChatClient(cfg.Matcher.BaseURL, cfg.Matcher.Model, apiKey),
		match.Prompts{Profile: cfg.Prompts.Profile, Expectations: cfg.Prompts.Expectations},
		match.Policy{
			MaxAttempts:   cfg.Matcher.MaxAttempts,
			BaseDelay:     time.Duration(cfg.Matcher.BaseDelayMS) * time.Millisecond,
			MaxDelay:      time.Duration(cfg.Matcher.MaxDelayMS) * time.Millisecond,
			JitterPercent: cfg.Matcher.JitterPercent,
		},
		matchOpts...,
	)

	p := pipeline.New(db, matcher, sources,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithFilters(filtersFrom(cfg)),
	)

	runOnce := func(ctx context.Context) error {
		started := time.Now()
		sum, err := p.Run(ctx)
		log.Printf("[engine] %s", sum)
		if !*noReport && sum.Matched > 0 {
			writeReport(ctx, db, cfg.App.ReportDir, started)
		}
		return err
	}

	log.Printf("[engine] db=%s sites=%d workers=%d", cfg.DBPath(), len(sources), cfg.Pipeline.Workers)
	if mins := cfg.Pipeline.IntervalMinutes; mins > 0 {
		err = scheduler.Every(ctx, time.Duration(mins)*time.Minute, "engine", runOnce)
	} else {
		err = runOnce(ctx)
	}
	if err != nil {
		log.Printf("[engine] stopped: %v", err)
		_ = browser.Close()
		_ = db.Close()
		os.Exit(1)
	}
}

func writeReport(ctx context.Context, db *store.DB, dir string, since time.Time) {
	rows, err := db.Scored(ctx, since)
	if err != nil {
		log.Printf("[report] %v", err)
		return
	}
	path, err := report.WriteFile(dir, rows, time.Now())
	if err != nil {
		log.Printf("[report] %v", err)
		return
	}
	log.Printf("[report] wrote %s (%d offers)", path, len(rows))
}

func storeAPIKey(cfg config.Config) error {
	fmt.Fprint(os.Stderr, "API key: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read API key: %w", err)
	}
	account := secrets.KeyringAccount(cfg)
	if err := secrets.SetAPIKey(account, strings.TrimSpace(line)); err != nil {
		return err
	}
	log.Printf("[secrets] stored API key for %s", account)
	return nil
}
