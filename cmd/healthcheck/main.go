package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/motorchat/datastore/configs"
	"github.com/motorchat/datastore/internal/core/ports"
	"github.com/motorchat/datastore/internal/infrastructure/db"
	"github.com/motorchat/datastore/internal/infrastructure/health"
	"github.com/motorchat/datastore/internal/infrastructure/redis"
)

// healthcheck probes every configured backend and exits non-zero if any is
// unhealthy. Unconfigured backends are skipped, matching the facades'
// disabled mode.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	var checkers []ports.HealthChecker

	if cfg.Database.DSN != "" {
		database, err := db.NewWithConfig(&cfg.Database)
		if err != nil {
			logger.WithError(err).Error("database: unreachable")
			os.Exit(1)
		}
		defer database.Close()
		checkers = append(checkers, health.NewDBHealthChecker(database))
	}

	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.WithError(err).Error("redis: unreachable")
			os.Exit(1)
		}
		defer client.Close()
		checkers = append(checkers, health.NewRedisHealthChecker(client))
	}

	if cfg.Vector.DSN != "" {
		vectorDB, err := db.New(cfg.Vector.DSN)
		if err != nil {
			logger.WithError(err).Error("vectorstore: unreachable")
			os.Exit(1)
		}
		defer vectorDB.Close()
		checkers = append(checkers, health.NewVectorHealthChecker(vectorDB))
	}

	if len(checkers) == 0 {
		logger.Warn("No backends configured, nothing to check")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	failed := false
	for _, c := range checkers {
		if err := c.Check(ctx); err != nil {
			logger.WithError(err).Errorf("%s: unhealthy", c.Name())
			failed = true
			continue
		}
		logger.Infof("%s: ok", c.Name())
	}
	if failed {
		os.Exit(1)
	}
}
