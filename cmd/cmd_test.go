package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

func TestApproverTargets(t *testing.T) {
	targets := approverTargets("http://localhost:8080/", "acme", "")
	require.Len(t, targets, 1)
	assert.Equal(t, "http://localhost:8080/repositories/acme/approvers", targets[0].URL)

	targets = approverTargets("http://localhost:8080", "acme", "widgets")
	require.Len(t, targets, 2)
	assert.Equal(t, "http://localhost:8080/repositories/acme/widgets/pulls/approvers", targets[1].URL)
	assert.Equal(t, "GET", targets[1].Method)
}

func TestApproversOutput_JSON(t *testing.T) {
	page := domain.SinglePage([]domain.Approver{{Login: "ann", ApprovalCount: 2, Repositories: []string{"widgets"}}})

	b, err := json.Marshal(approversOutput{Page: page})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"login":"ann","avatar_url":"","html_url":"","approval_count":2,"repositories":["widgets"]}],"total_count":1,"page":1,"per_page":1,"has_next":false}`, string(b))

	b, err = json.Marshal(approversOutput{Page: page, Summary: &domain.ApprovalSummary{Approvers: 1, TotalApprovals: 2, Mean: 2, Median: 2, Max: 2}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"summary":{"approvers":1,"total_approvals":2,"mean":2,"median":2,"max":2}`)
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "approvers", "loadtest"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}
