package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

// Browser is the pass-through part of the GitHub gateway.
type Browser interface {
	ListRepositories(ctx context.Context, owner string, opts domain.ListOptions, repoType domain.RepositoryType) (*domain.Page[domain.Repository], error)
	ListPullRequests(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.PullRequest], error)
	ListFiles(ctx context.Context, owner, repo, path string) ([]domain.FileItem, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (*domain.FileContent, error)
	RateLimit(ctx context.Context) (*domain.RateLimit, error)
}

// RepositoryHandler serves repository listings and the upstream budget.
type RepositoryHandler struct {
	*BaseHandler
	browser Browser
}

func NewRepositoryHandler(browser Browser, logger *logrus.Logger) *RepositoryHandler {
	return &RepositoryHandler{
		BaseHandler: NewBaseHandler(logger),
		browser:     browser,
	}
}

// ListRepositories handles GET /repositories/:owner.
func (h *RepositoryHandler) ListRepositories(c echo.Context) error {
	owner := c.Param("owner")
	logEntry := h.logRequest(c, "list_repositories").WithField("owner", owner)

	opts, err := bindListOptions(c)
	if err != nil {
		return h.fail(c, logEntry, err, "Invalid list options")
	}
	repoType, err := bindRepositoryType(c)
	if err != nil {
		return h.fail(c, logEntry, err, "Invalid repository type")
	}

	page, err := h.browser.ListRepositories(c.Request().Context(), owner, opts, repoType)
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to list repositories")
	}

	logEntry.WithField("count", page.TotalCount).Info("Repositories listed")
	return c.JSON(http.StatusOK, page)
}

// RateLimit handles GET /rate_limit.
func (h *RepositoryHandler) RateLimit(c echo.Context) error {
	logEntry := h.logRequest(c, "rate_limit")

	rl, err := h.browser.RateLimit(c.Request().Context())
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to query rate limit")
	}

	logEntry.WithField("remaining", rl.Remaining).Info("Rate limit retrieved")
	return c.JSON(http.StatusOK, rl)
}
