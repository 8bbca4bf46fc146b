package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-approvers/internal/domain"
	"github.com/naka-gawa/github-approvers/internal/usecase"
)

// approversOutput is what the approvers command prints; Summary is set with --summary.
type approversOutput struct {
	*domain.Page[domain.Approver]
	Summary *domain.ApprovalSummary `json:"summary,omitempty"`
}

var approversCmd = &cobra.Command{
	Use:   "approvers",
	Short: "Ranks pull request approvers and outputs as JSON",
	Long: `Ranks the users who approved pull requests of a repository, or of every repository
of a user or organization when --repo is omitted, and outputs the result in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger, err := newCLILogger(cmd, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		stateStr, _ := cmd.Flags().GetString("state")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")
		withSummary, _ := cmd.Flags().GetBool("summary")
		state := domain.PullRequestState(stateStr)
		opts := domain.ListOptions{Page: page, PerPage: perPage}

		// Inject dependencies and run the main business logic.
		githubGateway, err := newGateway(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		aggregator := newAggregator(cfg, githubGateway, logger)

		var result *domain.Page[domain.Approver]
		if repo != "" {
			result, err = aggregator.RepoApprovers(ctx, owner, repo, state, opts)
		} else {
			result, err = aggregator.OwnerApprovers(ctx, owner, state, opts)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate approvers: %v\n", err)
			os.Exit(1)
		}

		out := approversOutput{Page: result}
		if withSummary {
			summary, err := usecase.Summarize(result.Items)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to summarize approvers: %v\n", err)
				os.Exit(1)
			}
			out.Summary = &summary
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(approversCmd)
	approversCmd.Flags().StringP("owner", "o", "", "Target GitHub user or organization (required)")
	approversCmd.Flags().StringP("repo", "r", "", "Target repository; all repositories of the owner when empty")
	approversCmd.MarkFlagRequired("owner")
	approversCmd.Flags().String("state", string(domain.PullRequestStateAll), "Pull request state: open, closed or all")
	approversCmd.Flags().Int("page", 1, "Page of pull requests to scan per repository")
	approversCmd.Flags().Int("per-page", domain.DefaultPerPage, "Pull requests per page (1-100)")
	approversCmd.Flags().Bool("summary", false, "Include approval distribution statistics")
}
