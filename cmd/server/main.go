// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	applicationhandler "clubhub/internal/application/handler"
	"clubhub/internal/application/intake"
	applicationmetrics "clubhub/internal/application/metrics"
	applicationservice "clubhub/internal/application/service"
	applicationstore "clubhub/internal/application/store/application"
	campaignhandler "clubhub/internal/campaign/handler"
	campaignmetrics "clubhub/internal/campaign/metrics"
	campaignservice "clubhub/internal/campaign/service"
	campaignstore "clubhub/internal/campaign/store/campaign"
	membershiphandler "clubhub/internal/membership/handler"
	membershipservice "clubhub/internal/membership/service"
	membershipstore "clubhub/internal/membership/store"
	"clubhub/internal/notify"
	notifykafka "clubhub/internal/notify/kafka"
	notifyredis "clubhub/internal/notify/redis"
	notifystore "clubhub/internal/notify/store"
	"clubhub/internal/platform/config"
	"clubhub/internal/platform/httpserver"
	"clubhub/internal/platform/jwtauth"
	"clubhub/internal/platform/logger"
	platformmetrics "clubhub/internal/platform/metrics"
	platformredis "clubhub/internal/platform/redis"
	httptransport "clubhub/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	// Stores: PostgreSQL when configured, in-memory otherwise.
	var (
		campaigns    campaignservice.Store
		applications applicationservice.Store
		stats        campaignservice.StatsReader
		members      membershipservice.Store
		db           *sql.DB
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		campaigns = campaignstore.NewPostgres(db)
		pgApps := applicationstore.NewPostgres(db)
		applications = pgApps
		stats = pgApps
		members = membershipstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		memCampaigns := campaignstore.NewInMemory()
		memApps := applicationstore.NewInMemory(memCampaigns)
		campaigns = memCampaigns
		applications = memApps
		stats = memApps
		members = membershipstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	// Event sinks: Redis and Kafka when configured, in-process otherwise.
	var sinks []notify.Sink
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sinks = append(sinks, notifyredis.NewSink(redisClient.Client, cfg.Redis.Channel))
		log.Info("redis event sink enabled", "channel", cfg.Redis.Channel)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := notifykafka.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("kafka event sink enabled", "topic", cfg.KafkaTopic)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, notifystore.NewInMemory())
	}
	events := notify.NewPublisher(sinks,
		notify.WithLogger(log),
		notify.WithAsyncBuffer(cfg.NotifyBuffer),
	)
	defer events.Close()

	membershipSvc := membershipservice.New(members,
		membershipservice.WithLogger(log),
		membershipservice.WithEventPublisher(events),
		membershipservice.WithProjectionTimeout(cfg.ProjectionTimeout),
		membershipservice.WithProjectionAttempts(cfg.ProjectionAttempts),
		membershipservice.WithProjectionBackoff(cfg.ProjectionBackoff),
	)

	campaignSvc := campaignservice.New(campaigns, stats, membershipSvc,
		campaignservice.WithLogger(log),
		campaignservice.WithEventPublisher(events),
		campaignservice.WithMetrics(campaignmetrics.New()),
	)

	applicationSvc := applicationservice.New(applications, campaigns, membershipSvc, membershipSvc,
		intake.ValidateAnswers,
		applicationservice.WithLogger(log),
		applicationservice.WithEventPublisher(events),
		applicationservice.WithMetrics(applicationmetrics.New()),
	)

	router := httptransport.NewRouter(log, platformmetrics.New(),
		jwtauth.New(cfg.JWTSigningKey),
		campaignhandler.New(campaignSvc, log),
		applicationhandler.New(applicationSvc, log),
		membershiphandler.New(membershipSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting clubhub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
