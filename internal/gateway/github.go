// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

const (
	// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
	DefaultGraphQLURL = "https://api.github.com/graphql"

	apiVersion     = "2022-11-28"
	mediaType      = "application/vnd.github+json"
	reviewsPerPage = 100
)

// Options configures the upstream clients.
type Options struct {
	Token      string
	BaseURL    string
	GraphQLURL string
	// RateLimitSleep caps a single sleep on a secondary rate limit.
	RateLimitSleep time.Duration
}

// GitHubGateway talks to GitHub through a REST client for listings and a GraphQL client
// for the rate limit budget. It holds no per-request state and is safe for concurrent use.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *logrus.Logger
}

// headerTransport pins the media type and API version on every upstream request.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Accept", mediaType)
	r.Header.Set("X-GitHub-Api-Version", apiVersion)
	return t.base.RoundTrip(r)
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *logrus.Logger) (*GitHubGateway, error) {
	if opts.Token == "" {
		return nil, errors.New("github token is required")
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(opts.RateLimitSleep, nil),
		github_ratelimit.WithLimitDetectedCallback(func(cb *github_ratelimit.CallbackContext) {
			entry := logger.WithField("component", "gateway")
			if cb.SleepUntil != nil {
				entry = entry.WithField("sleep_until", cb.SleepUntil.Format(time.RFC3339))
			}
			entry.Warn("Secondary rate limit detected, waiting")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   &headerTransport{base: rateLimitWaiter},
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := parseBaseURL(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		restClient.BaseURL = baseURL
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" && opts.GraphQLURL != DefaultGraphQLURL {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid github base url %q: %w", raw, err)
	}
	return u, nil
}

// ListRepositories returns one page of repositories of owner. The owner is first resolved
// as a user; only a 404 from the user endpoint retries it once as an organization.
func (g *GitHubGateway) ListRepositories(ctx context.Context, owner string, opts domain.ListOptions, repoType domain.RepositoryType) (*domain.Page[domain.Repository], error) {
	log := g.logger.WithFields(logrus.Fields{"owner": owner, "page": opts.Page, "per_page": opts.PerPage})
	listOpts := github.ListOptions{Page: opts.Page, PerPage: opts.PerPage}

	repos, resp, err := g.restClient.Repositories.ListByUser(ctx, owner, &github.RepositoryListByUserOptions{
		Type:        string(repoType),
		ListOptions: listOpts,
	})
	err = wrapError("list user repositories", resp, err)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("Owner is not a user, retrying as organization")
		repos, resp, err = g.restClient.Repositories.ListByOrg(ctx, owner, &github.RepositoryListByOrgOptions{
			Type:        string(repoType),
			ListOptions: listOpts,
		})
		err = wrapError("list organization repositories", resp, err)
	}
	if err != nil {
		return nil, err
	}

	items := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		items = append(items, toRepository(r))
	}
	log.WithField("count", len(items)).Debug("Fetched repositories")
	return domain.NewPage(items, opts), nil
}

// ListPullRequests returns one page of pull requests of owner/repo filtered by state.
func (g *GitHubGateway) ListPullRequests(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.PullRequest], error) {
	prs, resp, err := g.restClient.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       string(state),
		ListOptions: github.ListOptions{Page: opts.Page, PerPage: opts.PerPage},
	})
	if err != nil {
		return nil, wrapError("list pull requests", resp, err)
	}

	items := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		items = append(items, toPullRequest(pr))
	}
	g.logger.WithFields(logrus.Fields{
		"repository": owner + "/" + repo,
		"state":      state,
		"page":       opts.Page,
		"count":      len(items),
	}).Debug("Fetched pull requests")
	return domain.NewPage(items, opts), nil
}

// ListReviews returns every review of a pull request, following pagination until the
// upstream reports no next page.
func (g *GitHubGateway) ListReviews(ctx context.Context, owner, repo string, number int) ([]domain.Review, error) {
	opts := &github.ListOptions{PerPage: reviewsPerPage}
	var reviews []domain.Review
	for {
		page, resp, err := g.restClient.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, wrapError("list reviews", resp, err)
		}
		for _, r := range page {
			reviews = append(reviews, toReview(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.WithField("pull_number", number).Debug("Fetching next page of reviews")
	}
	return reviews, nil
}

// ListFiles lists a repository directory. A path that points to a single file yields a
// one-element listing.
func (g *GitHubGateway) ListFiles(ctx context.Context, owner, repo, path string) ([]domain.FileItem, error) {
	file, dir, resp, err := g.restClient.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, wrapError("list files", resp, err)
	}
	if file != nil {
		return []domain.FileItem{toFileItem(file)}, nil
	}
	items := make([]domain.FileItem, 0, len(dir))
	for _, c := range dir {
		items = append(items, toFileItem(c))
	}
	return items, nil
}

// GetFileContent fetches a single file. Content is returned as the upstream encodes it.
func (g *GitHubGateway) GetFileContent(ctx context.Context, owner, repo, path string) (*domain.FileContent, error) {
	file, _, resp, err := g.restClient.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, wrapError("get file content", resp, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAFile, path)
	}
	var content string
	if file.Content != nil {
		content = *file.Content
	}
	return &domain.FileContent{
		Name:     file.GetName(),
		Path:     file.GetPath(),
		Size:     file.GetSize(),
		Content:  content,
		Encoding: file.GetEncoding(),
		HTMLURL:  file.GetHTMLURL(),
	}, nil
}

// rateLimitQuery reads the GraphQL budget of the token.
type rateLimitQuery struct {
	RateLimit struct {
		Limit     int
		Remaining int
		Cost      int
		ResetAt   githubv4.DateTime
	}
}

// RateLimit reports the remaining upstream budget of the configured token.
func (g *GitHubGateway) RateLimit(ctx context.Context) (*domain.RateLimit, error) {
	var q rateLimitQuery
	if err := g.graphqlClient.Query(ctx, &q, nil); err != nil {
		return nil, &domain.TransportError{Op: "query rate limit", Err: err}
	}
	return &domain.RateLimit{
		Limit:     q.RateLimit.Limit,
		Remaining: q.RateLimit.Remaining,
		Cost:      q.RateLimit.Cost,
		ResetAt:   q.RateLimit.ResetAt.Time,
	}, nil
}

// wrapError turns go-github failures into the domain error taxonomy.
func wrapError(op string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return &domain.UpstreamError{Op: op, StatusCode: errResp.Response.StatusCode, Message: errResp.Message, Err: err}
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &domain.UpstreamError{Op: op, StatusCode: rateErr.Response.StatusCode, Message: rateErr.Message, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return &domain.UpstreamError{Op: op, StatusCode: abuseErr.Response.StatusCode, Message: abuseErr.Message, Err: err}
	}
	if resp != nil && resp.Response != nil && resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.UpstreamError{Op: op, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Err: err}
	}
	return &domain.TransportError{Op: op, Err: err}
}
