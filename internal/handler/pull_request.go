package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

// ApproverAggregator ranks pull request approvers.
type ApproverAggregator interface {
	RepoApprovers(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.Approver], error)
	OwnerApprovers(ctx context.Context, owner string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.Approver], error)
}

// PullRequestHandler serves pull request listings and approver rankings.
type PullRequestHandler struct {
	*BaseHandler
	browser    Browser
	aggregator ApproverAggregator
}

func NewPullRequestHandler(browser Browser, aggregator ApproverAggregator, logger *logrus.Logger) *PullRequestHandler {
	return &PullRequestHandler{
		BaseHandler: NewBaseHandler(logger),
		browser:     browser,
		aggregator:  aggregator,
	}
}

// ListPullRequests handles GET /repositories/:owner/:repo/pulls.
func (h *PullRequestHandler) ListPullRequests(c echo.Context) error {
	owner, repo := c.Param("owner"), c.Param("repo")
	logEntry := h.logRequest(c, "list_pull_requests").WithFields(logrus.Fields{"owner": owner, "repo": repo})

	state, opts, err := bindStateAndPage(c, domain.PullRequestStateOpen)
	if err != nil {
		return h.fail(c, logEntry, err, "Invalid pull request query")
	}

	page, err := h.browser.ListPullRequests(c.Request().Context(), owner, repo, state, opts)
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to list pull requests")
	}

	logEntry.WithField("count", page.TotalCount).Info("Pull requests listed")
	return c.JSON(http.StatusOK, page)
}

// RepoApprovers handles GET /repositories/:owner/:repo/pulls/approvers.
func (h *PullRequestHandler) RepoApprovers(c echo.Context) error {
	owner, repo := c.Param("owner"), c.Param("repo")
	logEntry := h.logRequest(c, "repo_approvers").WithFields(logrus.Fields{"owner": owner, "repo": repo})

	state, opts, err := bindStateAndPage(c, domain.PullRequestStateAll)
	if err != nil {
		return h.fail(c, logEntry, err, "Invalid approver query")
	}

	page, err := h.aggregator.RepoApprovers(c.Request().Context(), owner, repo, state, opts)
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to aggregate approvers")
	}

	logEntry.WithField("approvers", page.TotalCount).Info("Repository approvers aggregated")
	return c.JSON(http.StatusOK, page)
}

// OwnerApprovers handles GET /repositories/:owner/approvers.
func (h *PullRequestHandler) OwnerApprovers(c echo.Context) error {
	owner := c.Param("owner")
	logEntry := h.logRequest(c, "owner_approvers").WithField("owner", owner)

	state, opts, err := bindStateAndPage(c, domain.PullRequestStateAll)
	if err != nil {
		return h.fail(c, logEntry, err, "Invalid approver query")
	}

	page, err := h.aggregator.OwnerApprovers(c.Request().Context(), owner, state, opts)
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to aggregate approvers")
	}

	logEntry.WithField("approvers", page.TotalCount).Info("Owner approvers aggregated")
	return c.JSON(http.StatusOK, page)
}

func bindStateAndPage(c echo.Context, def domain.PullRequestState) (domain.PullRequestState, domain.ListOptions, error) {
	state, err := bindState(c, def)
	if err != nil {
		return state, domain.ListOptions{}, err
	}
	opts, err := bindListOptions(c)
	return state, opts, err
}
