package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	config "github.com/motorchat/datastore/configs"
)

// Client wraps the OpenAI API for the connectivity check. The base URL is
// overridable so OpenAI-compatible providers work too.
type Client struct {
	api     *openai.Client
	timeout time.Duration
}

// NewClient builds a Client from config. The API key must be set; callers
// decide how to report its absence.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientConfig),
		timeout: timeout,
	}, nil
}

// ListModels returns the IDs of the models the configured key can access.
// A successful call proves the key, the endpoint, and the network path all
// work.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
