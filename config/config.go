package config

import (
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/subosito/gotenv"
)

type RedditConfig struct {
	ClientID     string `env:"REDDIT_CLIENT_ID"`
	ClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	UserAgent    string `env:"REDDIT_USER_AGENT" env-default:"Maternoscope Data Collection Bot 1.0"`
}

type SnowflakeConfig struct {
	Account   string `env:"SNOWFLAKE_ACCOUNT"`
	User      string `env:"SNOWFLAKE_USERNAME"`
	Password  string `env:"SNOWFLAKE_PASSWORD"`
	Warehouse string `env:"SNOWFLAKE_WAREHOUSE" env-default:"COMPUTE_WH"`
	Database  string `env:"SNOWFLAKE_DATABASE" env-default:"MATERNOSCOPE"`
	Schema    string `env:"SNOWFLAKE_SCHEMA" env-default:"PUBLIC"`
	Role      string `env:"SNOWFLAKE_ROLE" env-default:"ACCOUNTADMIN"`
}

type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY"`
	OrgID  string `env:"OPENAI_ORG_ID"`
	Model  string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
}

type Config struct {
	Reddit    RedditConfig
	Snowflake SnowflakeConfig
	OpenAI    OpenAIConfig
}

// Load reads .env (if present) into the process environment and parses the
// typed configuration from it.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil {
		slog.Debug("No .env file found, using OS environment")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment config: %w", err)
	}
	return &cfg, nil
}
