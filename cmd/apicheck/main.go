package main

import (
	"context"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	config "github.com/motorchat/datastore/configs"
	"github.com/motorchat/datastore/internal/infrastructure/llm"
)

// apicheck verifies that the configured LLM API key, endpoint, and network
// path work by listing the models the key can access.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	os.Exit(run(cfg, logger))
}

// run performs the check and returns the process exit code. A missing key is
// reported but is not a failed check; only an actual API failure is.
func run(cfg *config.Config, logger *logrus.Logger) int {
	if cfg.OpenAI.APIKey == "" {
		logger.Error("OPENAI_API_KEY is not set")
		return 0
	}

	client, err := llm.NewClient(&cfg.OpenAI)
	if err != nil {
		logger.WithError(err).Error("Failed to create the API client")
		return 1
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		logger.WithError(err).Error("API connectivity check failed")
		return 1
	}

	logger.WithField("models", len(models)).Info("The API is working correctly, available models:")
	for _, id := range models {
		logger.Infof("- %s", id)
	}
	return 0
}
