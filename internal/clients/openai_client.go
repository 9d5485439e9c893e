package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maternoscope/pipeline/config"
)

// Timeout for individual OpenAI API requests.
const openAIRequestTimeout = 60 * time.Second

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

// NewOpenAIClient builds the annotator client. A missing API key is a
// connection-establishment failure and is fatal to the run.
func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.OrgID != "" {
		clientConfig.OrgID = cfg.OrgID
	}
	clientConfig.HTTPClient = &http.Client{Timeout: openAIRequestTimeout}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", openAIRequestTimeout),
		slog.String("model", cfg.Model))

	return &OpenAIClient{
		Client: openai.NewClientWithConfig(clientConfig),
		Model:  cfg.Model,
	}, nil
}
