package handler

import (
	"fmt"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

func bindQuery(c echo.Context, name string, dest interface{}) error {
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), dest); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// bindListOptions reads page and per_page, falling back to the first default-sized page.
func bindListOptions(c echo.Context) (domain.ListOptions, error) {
	opts := domain.DefaultListOptions()
	if err := bindQuery(c, "page", &opts.Page); err != nil {
		return opts, err
	}
	if err := bindQuery(c, "per_page", &opts.PerPage); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func bindState(c echo.Context, def domain.PullRequestState) (domain.PullRequestState, error) {
	raw := string(def)
	if err := bindQuery(c, "state", &raw); err != nil {
		return def, err
	}
	state := domain.PullRequestState(raw)
	return state, state.Validate()
}

func bindRepositoryType(c echo.Context) (domain.RepositoryType, error) {
	raw := string(domain.RepositoryTypeAll)
	if err := bindQuery(c, "type", &raw); err != nil {
		return domain.RepositoryTypeAll, err
	}
	repoType := domain.RepositoryType(raw)
	return repoType, repoType.Validate()
}

// wildcardPath returns the unescaped remainder of a "*" route.
func wildcardPath(c echo.Context) string {
	raw := c.Param("*")
	if p, err := url.PathUnescape(raw); err == nil {
		return p
	}
	return raw
}
