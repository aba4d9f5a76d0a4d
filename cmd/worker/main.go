package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/blogcraftai/blogcraft-backend/config"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	cronjob "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/cron"
	seorepo "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/repository"
	seoservice "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"
	"github.com/blogcraftai/blogcraft-backend/internal/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		logging.Log.Fatal("usage: worker <purge-history|schedule>")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(cfg.App.LogLevel, cfg.App.LogFile, cfg.IsProduction()); err != nil {
		logging.Log.Fatalf("init logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "purge-history":
		os.Exit(purgeHistory(ctx, cfg, false))
	case "schedule":
		os.Exit(purgeHistory(ctx, cfg, true))
	default:
		logging.Log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// purgeHistory deletes expired suggestion runs once, or nightly until
// interrupted when keepRunning is set.
func purgeHistory(ctx context.Context, cfg *config.Config, keepRunning bool) int {
	pool, err := postgres.OpenPool(ctx, &cfg.Database)
	if err != nil {
		logging.Log.Errorf("open pool: %v", err)
		return 1
	}
	defer pool.Close()

	// Purging needs only the history store; generation is never invoked.
	svc := seoservice.NewSuggestionService(nil, nil, seorepo.NewHistoryRepository(pool), nil, seoservice.Options{})
	scheduler := cronjob.NewScheduler(svc, cfg.AI.HistoryRetainFor)

	if !keepRunning {
		if _, err := scheduler.RunOnce(ctx); err != nil {
			return 1
		}
		return 0
	}

	if err := scheduler.Start(); err != nil {
		logging.Log.Errorf("start scheduler: %v", err)
		return 1
	}
	<-ctx.Done()
	scheduler.Stop(context.Background())
	return 0
}
