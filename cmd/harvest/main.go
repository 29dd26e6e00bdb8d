package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fortuna/ceres/internal/fetch"
	"github.com/fortuna/ceres/internal/harvest"
	"github.com/fortuna/ceres/internal/ingest/wiaa"
	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/publisher"
	"github.com/fortuna/ceres/internal/source"
	"github.com/fortuna/ceres/internal/store"
	"github.com/fortuna/ceres/internal/store/repository"
)

func main() {
	var (
		yearsFlag  = flag.String("years", "", "Comma-separated tournament years (e.g. 2023,2024)")
		gender     = flag.String("gender", "", "Gender to harvest (Boys or Girls; empty for both)")
		division   = flag.String("division", "", "Division to harvest (Div1..Div5; empty for all)")
		modeFlag   = flag.String("mode", getEnv("DATA_MODE", "LIVE"), "Data mode: LIVE or FIXTURE")
		fixtureDir = flag.String("fixtures", getEnv("FIXTURE_DIR", "tests/fixtures/wiaa"), "Fixture snapshot directory")
		dsn        = flag.String("dsn", os.Getenv("DATABASE_DSN"), "Postgres DSN; empty runs without a store")
		redisURL   = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL; empty skips stream publishing")
		dryRun     = flag.Bool("dry-run", false, "Parse and report without writing to the store")
		logLevel   = flag.String("log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logging.New(logging.ParseLevel(*logLevel))
	defer log.Sync()

	years, err := parseYears(*yearsFlag)
	if err != nil {
		log.Error("invalid -years", "error", err)
		os.Exit(1)
	}
	if len(years) == 0 {
		log.Error("no years given; pass -years (e.g. -years 2024)")
		os.Exit(1)
	}

	mode, err := source.ParseMode(*modeFlag)
	if err != nil {
		log.Error("invalid -mode", "error", err)
		os.Exit(1)
	}

	spec := harvest.JobSpec{Years: years, DryRun: *dryRun}
	if *gender != "" {
		spec.Genders = []string{*gender}
	}
	if *division != "" {
		spec.Divisions = []string{*division}
	}

	var (
		fetcher  *fetch.Fetcher
		renderer *fetch.Renderer
		fixtures *source.FixtureStore
	)
	if mode == source.ModeFixture {
		fixtures = source.NewFixtureStore(*fixtureDir, log)
	} else {
		fetchCfg := fetch.DefaultConfig()
		fetcher, err = fetch.NewFetcher(fetchCfg, nil, log)
		if err != nil {
			log.Error("building fetcher", "error", err)
			os.Exit(1)
		}
		renderer = fetch.NewRenderer(fetchCfg, fetcher, log)
		defer renderer.Close()
	}

	router := source.NewRouter(mode, fetcher, renderer, fixtures, log)
	client := wiaa.NewClient(router, nil, wiaa.DefaultConfig(), log)

	var (
		games *repository.GameRepository
		runs  *repository.RunRepository
	)
	if *dsn != "" {
		db, err := store.NewDatabase(*dsn, log)
		if err != nil {
			log.Error("connecting to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.RunMigrations(); err != nil {
			log.Error("running migrations", "error", err)
			os.Exit(1)
		}
		games = repository.NewGameRepository(db)
		runs = repository.NewRunRepository(db)
	}

	var pub *publisher.Publisher
	if *redisURL != "" {
		pub, err = publisher.NewPublisher(*redisURL, log)
		if err != nil {
			log.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
	}

	runner := harvest.NewRunner(client, games, runs, pub, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, spec, harvest.NewLogReporter(log))
	if err != nil {
		log.Error("harvest failed", "error", err)
		os.Exit(1)
	}

	client.LogHealth()
	if summary.SlicesWithData == 0 {
		log.Warn("no brackets found for the requested slices")
	}
}

// parseYears splits a comma-separated year list.
func parseYears(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		year, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, year)
	}
	return years, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
