// Package config loads application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read on startup when present; real environment variables win.
const DefaultEnvFile = ".env"

// Config holds application configuration.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Server      ServerConfig      `mapstructure:"server"`
	GitHub      GitHubConfig      `mapstructure:"github"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// GitHubConfig contains upstream API settings.
type GitHubConfig struct {
	Token          string        `mapstructure:"token"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	GraphQLURL     string        `mapstructure:"graphql_url"`
	RateLimitSleep time.Duration `mapstructure:"rate_limit_sleep"`
}

// AggregationConfig tunes the approver aggregation.
type AggregationConfig struct {
	ReviewConcurrency int `mapstructure:"review_concurrency"`
	OwnerRepoPageSize int `mapstructure:"owner_repo_page_size"`
}

// Load reads configuration from envFile and the environment using viper with typed
// defaults, then validates it. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if envMap, err := godotenv.Read(envFile); err == nil {
			for k, val := range envMap {
				if _, exists := os.LookupEnv(k); !exists {
					_ = os.Setenv(k, val)
				}
			}
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 2*time.Minute)

	v.SetDefault("github.token", "")
	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("github.graphql_url", "https://api.github.com/graphql")
	v.SetDefault("github.rate_limit_sleep", time.Hour)

	v.SetDefault("aggregation.review_concurrency", 4)
	v.SetDefault("aggregation.owner_repo_page_size", 100)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"logging.format",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"server.request_timeout",
		"github.token",
		"github.api_base_url",
		"github.graphql_url",
		"github.rate_limit_sleep",
		"aggregation.review_concurrency",
		"aggregation.owner_repo_page_size",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Validate ensures required fields are present and within range.
func (c Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.New("github.token is required (set GITHUB_TOKEN)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Aggregation.ReviewConcurrency < 1 {
		return fmt.Errorf("aggregation.review_concurrency must be positive, got %d", c.Aggregation.ReviewConcurrency)
	}
	if c.Aggregation.OwnerRepoPageSize < 1 || c.Aggregation.OwnerRepoPageSize > 100 {
		return fmt.Errorf("aggregation.owner_repo_page_size must be between 1 and 100, got %d", c.Aggregation.OwnerRepoPageSize)
	}
	for key, raw := range map[string]string{
		"github.api_base_url": c.GitHub.APIBaseURL,
		"github.graphql_url":  c.GitHub.GraphQLURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute url, got %q", key, raw)
		}
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
