package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-approvers/internal/config"
	"github.com/naka-gawa/github-approvers/internal/gateway"
	"github.com/naka-gawa/github-approvers/internal/logging"
	"github.com/naka-gawa/github-approvers/internal/usecase"
)

// loadConfig reads configuration using the --env-file flag of the root command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(envFile)
}

// newCLILogger discards all logs unless --verbose is set.
func newCLILogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := logging.New(cfg.Logging.Level, "text")
	if err != nil {
		return nil, err
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger, nil
}

// newGateway constructs the single upstream client shared by every component.
func newGateway(cfg *config.Config, logger *logrus.Logger) (*gateway.GitHubGateway, error) {
	gw, err := gateway.NewGitHubGateway(gateway.Options{
		Token:          cfg.GitHub.Token,
		BaseURL:        cfg.GitHub.APIBaseURL,
		GraphQLURL:     cfg.GitHub.GraphQLURL,
		RateLimitSleep: cfg.GitHub.RateLimitSleep,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return gw, nil
}

func newAggregator(cfg *config.Config, source usecase.Source, logger *logrus.Logger) *usecase.Aggregator {
	return usecase.NewAggregator(source, logger,
		usecase.WithReviewConcurrency(cfg.Aggregation.ReviewConcurrency),
		usecase.WithOwnerRepoPageSize(cfg.Aggregation.OwnerRepoPageSize),
	)
}
