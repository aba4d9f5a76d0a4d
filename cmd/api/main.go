package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/blogcraftai/blogcraft-backend/config"
	httpapi "github.com/blogcraftai/blogcraft-backend/internal/api/http"
	"github.com/blogcraftai/blogcraft-backend/internal/auth"
	authhttp "github.com/blogcraftai/blogcraft-backend/internal/auth/http"
	authmw "github.com/blogcraftai/blogcraft-backend/internal/auth/middleware"
	authrepo "github.com/blogcraftai/blogcraft-backend/internal/auth/repository"
	authservice "github.com/blogcraftai/blogcraft-backend/internal/auth/service"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
	bloghttp "github.com/blogcraftai/blogcraft-backend/internal/blog/http"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/render"
	blogrepo "github.com/blogcraftai/blogcraft-backend/internal/blog/repository"
	blogservice "github.com/blogcraftai/blogcraft-backend/internal/blog/service"
	"github.com/blogcraftai/blogcraft-backend/internal/bootstrap"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	"github.com/blogcraftai/blogcraft-backend/internal/metrics"
	cronjob "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/cron"
	seohttp "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/http"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/provider"
	seorepo "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/repository"
	seoservice "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"
)

const serviceName = "blogcraft-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatalf("load config: %v", err)
	}

	if err := logging.Init(cfg.App.LogLevel, cfg.App.LogFile, cfg.IsProduction()); err != nil {
		logging.Log.Fatalf("init logging: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		logging.Log.Fatalf("open stores: %v", err)
	}
	defer stores.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Identity
	var verifier authmw.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			logging.Log.Fatalf("init firebase: %v", err)
		}
		verifier = client
	} else {
		logging.Log.Warn("FIREBASE_CREDENTIALS_PATH is not set; trusting X-User-Id headers (development only)")
	}
	authService := authservice.NewAuthService(authrepo.NewUserRepository(stores.SQL))

	// SEO suggestions
	var cache seoservice.Cache
	if stores.Redis != nil {
		cache = seorepo.NewCacheRepository(stores.Redis, cfg.AI.CacheTTL)
	}
	aiClient := provider.NewClient(provider.Config{
		Endpoint: cfg.AI.ProviderURL,
		APIKey:   cfg.AI.APIKey,
		Timeout:  cfg.AI.Timeout,
	}, nil)
	defer aiClient.Close()

	suggestions := seoservice.NewSuggestionService(
		aiClient,
		cache,
		seorepo.NewHistoryRepository(stores.Pool),
		m,
		seoservice.Options{RequestsPerSec: cfg.AI.RequestsPerSec, Burst: cfg.AI.Burst},
	)

	scheduler := cronjob.NewScheduler(suggestions, cfg.AI.HistoryRetainFor)
	if err := scheduler.Start(); err != nil {
		logging.Log.Fatalf("start scheduler: %v", err)
	}

	// Blog
	publisher := events.New(cfg.Kafka, m)
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Log.WithError(err).Warn("closing event publisher")
		}
	}()

	posts := blogrepo.NewPostRepository(stores.SQL)
	comments := blogrepo.NewCommentRepository(stores.SQL)
	reactions := blogrepo.NewReactionRepository(stores.SQL)
	tags := blogrepo.NewTagRepository(stores.SQL)

	blogHandler := bloghttp.New(
		blogservice.NewPostService(posts, comments, reactions, suggestions, render.NewMarkdown(), publisher),
		blogservice.NewCommentService(comments, posts, publisher),
		blogservice.NewTagService(tags),
		blogservice.NewReactionService(reactions, posts, publisher),
	)

	checks := map[string]httpapi.Pinger{
		"postgres": httpapi.PingFunc(stores.SQL.PingContext),
		"pgxpool":  httpapi.PingFunc(stores.Pool.Ping),
	}
	if stores.Redis != nil {
		checks["redis"] = httpapi.PingFunc(func(ctx context.Context) error {
			return stores.Redis.Ping(ctx).Err()
		})
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		HealthChecks:   checks,
		Authenticator:  authmw.NewAuthenticator(verifier, authService),
		Blog:           blogHandler,
		SEO:            seohttp.New(suggestions),
		Auth:           authhttp.New(authService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logging.Log.Errorf("listen on %s: %v", server.Addr, err)
		return
	}

	logging.Log.Infof("%s %s listening on %s (env=%s)", serviceName, cfg.App.Version, server.Addr, cfg.App.Environment)
	// Serve returns only after in-flight requests drain, so the deferred
	// closers never pull stores out from under a running handler.
	if err := bootstrap.Serve(ctx, server, ln, 15*time.Second, scheduler.Stop); err != nil {
		logging.Log.Errorf("server error: %v", err)
	}
	logging.Log.Info("server stopped")
}
