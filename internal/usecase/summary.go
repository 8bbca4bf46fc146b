package usecase

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

// Summarize describes how approvals are spread over a ranked approver list.
func Summarize(approvers []domain.Approver) (domain.ApprovalSummary, error) {
	summary := domain.ApprovalSummary{Approvers: len(approvers)}
	if len(approvers) == 0 {
		return summary, nil
	}

	counts := make([]int, len(approvers))
	for i, a := range approvers {
		counts[i] = a.ApprovalCount
		summary.TotalApprovals += a.ApprovalCount
	}
	data := stats.LoadRawData(counts)

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, fmt.Errorf("failed to compute mean: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, fmt.Errorf("failed to compute median: %w", err)
	}
	maxCount, err := stats.Max(data)
	if err != nil {
		return summary, fmt.Errorf("failed to compute max: %w", err)
	}

	summary.Mean = mean
	summary.Median = median
	summary.Max = int(maxCount)
	return summary, nil
}
