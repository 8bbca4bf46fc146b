package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// NewServer builds the echo instance with middleware and every route registered.
func NewServer(browser Browser, aggregator ApproverAggregator, logger *logrus.Logger, requestTimeout time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(LoggingMiddleware(logger))
	if requestTimeout > 0 {
		e.Use(middleware.ContextTimeout(requestTimeout))
	}

	RegisterHandlers(e,
		NewRepositoryHandler(browser, logger),
		NewPullRequestHandler(browser, aggregator, logger),
		NewFileHandler(browser, logger),
	)
	return e
}

// RegisterHandlers mounts the public routes on e.
func RegisterHandlers(e *echo.Echo, repos *RepositoryHandler, pulls *PullRequestHandler, files *FileHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/rate_limit", repos.RateLimit)

	g := e.Group("/repositories")
	g.GET("/:owner", repos.ListRepositories)
	g.GET("/:owner/approvers", pulls.OwnerApprovers)
	g.GET("/:owner/:repo/pulls", pulls.ListPullRequests)
	g.GET("/:owner/:repo/pulls/approvers", pulls.RepoApprovers)
	g.GET("/:owner/:repo/files", files.ListFiles)
	g.GET("/:owner/:repo/files/*", files.GetFileContent)
}
