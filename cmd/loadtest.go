package cmd

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Attacks the approver endpoints of a running server and reports latencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		owner, _ := cmd.Flags().GetString("owner")
		repo, _ := cmd.Flags().GetString("repo")
		rps, _ := cmd.Flags().GetInt("rate")
		duration, _ := cmd.Flags().GetDuration("duration")

		targeter := vegeta.NewStaticTargeter(approverTargets(target, owner, repo)...)
		rate := vegeta.Rate{Freq: rps, Per: time.Second}
		attacker := vegeta.NewAttacker()

		var metrics vegeta.Metrics
		fmt.Fprintf(cmd.ErrOrStderr(), "Starting attack: %s for %s\n", target, duration)
		for res := range attacker.Attack(targeter, rate, duration, "approvers") {
			metrics.Add(res)
		}
		metrics.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "=== Results ===")
		fmt.Fprintf(out, "Requests: %d\n", metrics.Requests)
		fmt.Fprintf(out, "Success rate: %.4f%%\n", metrics.Success*100)
		fmt.Fprintf(out, "Latency mean: %s\n", metrics.Latencies.Mean)
		fmt.Fprintf(out, "Latency P95: %s\n", metrics.Latencies.P95)
		fmt.Fprintf(out, "Latency P99: %s\n", metrics.Latencies.P99)
		if len(metrics.Errors) > 0 {
			fmt.Fprintf(out, "Errors: %s\n", strings.Join(metrics.Errors, "; "))
		}
		return nil
	},
}

// approverTargets hits the owner-wide endpoint and, when repo is set, the repository one.
func approverTargets(base, owner, repo string) []vegeta.Target {
	base = strings.TrimSuffix(base, "/")
	header := http.Header{"Accept": {"application/json"}}
	targets := []vegeta.Target{{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/repositories/%s/approvers", base, owner),
		Header: header,
	}}
	if repo != "" {
		targets = append(targets, vegeta.Target{
			Method: http.MethodGet,
			URL:    fmt.Sprintf("%s/repositories/%s/%s/pulls/approvers", base, owner, repo),
			Header: header,
		})
	}
	return targets
}

func init() {
	rootCmd.AddCommand(loadtestCmd)
	loadtestCmd.Flags().String("target", "http://localhost:8080", "Base URL of a running server")
	loadtestCmd.Flags().StringP("owner", "o", "", "Owner whose approvers are requested (required)")
	loadtestCmd.Flags().StringP("repo", "r", "", "Repository to include in the attack")
	loadtestCmd.MarkFlagRequired("owner")
	loadtestCmd.Flags().Int("rate", 5, "Requests per second")
	loadtestCmd.Flags().Duration("duration", 30*time.Second, "Attack duration")
}
