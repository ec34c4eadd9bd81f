package main

import (
	"flag"
	"log"

	"github.com/sirupsen/logrus"

	config "github.com/motorchat/datastore/configs"
	"github.com/motorchat/datastore/internal/infrastructure/db"
)

// migrate applies the schema migrations (including the pgvector tables) to
// the vector database, or to DATABASE_URL when no VECTOR_DB_URL is set.
func main() {
	path := flag.String("path", "./migrations", "directory containing migration files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()

	dsn := cfg.Vector.DSN
	if dsn == "" {
		dsn = cfg.Database.DSN
	}

	database, err := db.New(dsn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to the database")
	}
	defer database.Close()

	if err := database.Migrate(*path); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	logger.Info("Migrations applied successfully")
}
