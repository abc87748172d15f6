package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	counterhandler "attestry/internal/counter/handler"
	counterservice "attestry/internal/counter/service"
	counterstore "attestry/internal/counter/store"
	"attestry/internal/events"
	eventskafka "attestry/internal/events/kafka"
	eventsworker "attestry/internal/events/worker"
	"attestry/internal/jwtauth"
	"attestry/internal/platform/config"
	"attestry/internal/platform/httpserver"
	"attestry/internal/platform/logger"
	"attestry/internal/platform/metrics"
	platformredis "attestry/internal/platform/redis"
	registryhandler "attestry/internal/registry/handler"
	registryservice "attestry/internal/registry/service"
	identitystore "attestry/internal/registry/store/identity"
	verificationstore "attestry/internal/registry/store/verification"
	httptransport "attestry/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		identities    registryservice.IdentityStore
		verifications registryservice.VerificationStore
	)

	switch {
	case cfg.Postgres.DSN != "":
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			return
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			return
		}
		identityPG := identitystore.NewPostgres(db)
		verificationPG := verificationstore.NewPostgres(db)
		if err := identityPG.EnsureSchema(ctx); err != nil {
			log.Error("ensure schema", "error", err)
			return
		}
		if err := verificationPG.EnsureSchema(ctx); err != nil {
			log.Error("ensure schema", "error", err)
			return
		}
		identities, verifications = identityPG, verificationPG
		log.Info("using postgres stores")
	default:
		identities = identitystore.New()
		memVerifications := verificationstore.New()
		verifications = memVerifications

		// Redis can back the verification relation on its own when no SQL
		// backend is configured.
		redisClient, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("connect redis", "error", err)
			return
		}
		if redisClient != nil {
			defer redisClient.Close()
			verifications = verificationstore.NewRedis(redisClient.Client)
			log.Info("using redis verification store")
		} else {
			log.Info("using in-memory stores")
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	var sink events.Sink = events.NewInMemoryStore()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := eventskafka.NewSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			return
		}
		defer kafkaSink.Close()

		inbox := make(chan events.Event, 256)
		worker := eventsworker.NewWorker(kafkaSink, inbox)
		g.Go(func() error { return worker.Run(ctx) })
		sink = events.NewChanSink(inbox)
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	}
	publisher := events.NewPublisher(sink)

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "attestry", "attestry-api")

	registry := registryservice.NewService(identities, verifications, publisher, cfg.Limits, m)
	counter := counterservice.NewService(counterstore.New(), publisher, cfg.Counter, m)

	router := httptransport.NewRouter(
		registryhandler.New(registry, log, m, jwtService),
		counterhandler.New(counter, log, m, jwtService),
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting attestry", "addr", cfg.Addr)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("server exited", "error", err)
	}
}
