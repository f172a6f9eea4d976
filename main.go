// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/queue-matchmaker/pkg/api"
	"github.com/AccelByte/queue-matchmaker/pkg/config"
	"github.com/AccelByte/queue-matchmaker/pkg/discovery"
	"github.com/AccelByte/queue-matchmaker/pkg/matchmaker"
	"github.com/AccelByte/queue-matchmaker/pkg/metrics"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.LogJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.WithField("environment", cfg.Environment).Info("queue matchmaker starting")

	queues, err := config.LoadQueues(cfg.QueueConfigPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load queue definitions")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisStore, err := store.NewRedisStore(ctx, store.RedisConfig{
		Addr:      cfg.RedisAddr,
		Username:  cfg.RedisUsername,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.KeyPrefix,
	}, store.Expiry{
		Queue:      time.Duration(cfg.QueueExpireSecond) * time.Second,
		Server:     time.Duration(cfg.ServerExpireSecond) * time.Second,
		Match:      time.Duration(cfg.MatchExpireSecond) * time.Second,
		FoundParty: time.Duration(cfg.FoundPartyExpireSecond) * time.Second,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisStore.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	matchmakingMetrics := metrics.NewMetrics(registry)

	services := matchmaker.Services{
		QueueStore: redisStore,
		Creator:    matchmaker.NewMatchCreator(redisStore, matchmakingMetrics),
		Metrics:    matchmakingMetrics,
		FetchLimit: cfg.PartyFetchLimit,
	}

	scheduler := discovery.New(queues, services)
	if cfg.MatchmakingEnabled {
		if err := scheduler.Start(ctx); err != nil {
			logrus.WithError(err).Fatal("failed to start discovery schedulers")
		}
	} else {
		logrus.Info("matchmaking disabled in this process, serving API only")
	}

	server := api.NewServer(cfg.AuthKey, queues, redisStore, registry)
	handler := cors.Default().Handler(server.Router())

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("graceful shutdown failed")
		}
	}()

	logrus.WithField("address", cfg.Address).Info("queue matchmaker listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("server stopped")
	}

	scheduler.Wait()
	logrus.Info("server shut down cleanly")
}
