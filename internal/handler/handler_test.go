package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

type mockBrowser struct {
	mock.Mock
}

func (m *mockBrowser) ListRepositories(ctx context.Context, owner string, opts domain.ListOptions, repoType domain.RepositoryType) (*domain.Page[domain.Repository], error) {
	args := m.Called(ctx, owner, opts, repoType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Repository]), args.Error(1)
}

func (m *mockBrowser) ListPullRequests(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.PullRequest], error) {
	args := m.Called(ctx, owner, repo, state, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.PullRequest]), args.Error(1)
}

func (m *mockBrowser) ListFiles(ctx context.Context, owner, repo, path string) ([]domain.FileItem, error) {
	args := m.Called(ctx, owner, repo, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileItem), args.Error(1)
}

func (m *mockBrowser) GetFileContent(ctx context.Context, owner, repo, path string) (*domain.FileContent, error) {
	args := m.Called(ctx, owner, repo, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileContent), args.Error(1)
}

func (m *mockBrowser) RateLimit(ctx context.Context) (*domain.RateLimit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimit), args.Error(1)
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) RepoApprovers(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.Approver], error) {
	args := m.Called(ctx, owner, repo, state, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Approver]), args.Error(1)
}

func (m *mockAggregator) OwnerApprovers(ctx context.Context, owner string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.Approver], error) {
	args := m.Called(ctx, owner, state, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Approver]), args.Error(1)
}

func setupServer(t *testing.T) (*echo.Echo, *mockBrowser, *mockAggregator) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	browser := new(mockBrowser)
	aggregator := new(mockAggregator)
	t.Cleanup(func() {
		browser.AssertExpectations(t)
		aggregator.AssertExpectations(t)
	})
	return NewServer(browser, aggregator, logger, time.Minute), browser, aggregator
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	e, _, _ := setupServer(t)

	rec := doGet(e, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRepoApprovers(t *testing.T) {
	e, _, aggregator := setupServer(t)
	page := domain.SinglePage([]domain.Approver{{Login: "ann", ApprovalCount: 2, Repositories: []string{"widgets"}}})
	aggregator.On("RepoApprovers", mock.Anything, "acme", "widgets", domain.PullRequestStateAll, domain.ListOptions{Page: 1, PerPage: 30}).Return(page, nil)

	rec := doGet(e, "/repositories/acme/widgets/pulls/approvers")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{"login":"ann","avatar_url":"","html_url":"","approval_count":2,"repositories":["widgets"]}],"total_count":1,"page":1,"per_page":1,"has_next":false}`, rec.Body.String())
}

func TestOwnerApprovers(t *testing.T) {
	e, _, aggregator := setupServer(t)
	aggregator.On("OwnerApprovers", mock.Anything, "acme", domain.PullRequestStateClosed, domain.ListOptions{Page: 3, PerPage: 50}).
		Return(domain.SinglePage[domain.Approver](nil), nil)

	rec := doGet(e, "/repositories/acme/approvers?state=closed&page=3&per_page=50")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total_count":0,"page":1,"per_page":0,"has_next":false}`, rec.Body.String())
}

func TestListPullRequests_DefaultsToOpen(t *testing.T) {
	e, browser, _ := setupServer(t)
	opts := domain.ListOptions{Page: 1, PerPage: 2}
	browser.On("ListPullRequests", mock.Anything, "acme", "widgets", domain.PullRequestStateOpen, opts).
		Return(domain.NewPage([]domain.PullRequest{{Number: 1}, {Number: 2}}, opts), nil)

	rec := doGet(e, "/repositories/acme/widgets/pulls?per_page=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.Page[domain.PullRequest]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.True(t, page.HasNext)
	assert.Len(t, page.Items, 2)
}

func TestListRepositories(t *testing.T) {
	e, browser, _ := setupServer(t)
	opts := domain.DefaultListOptions()
	browser.On("ListRepositories", mock.Anything, "acme", opts, domain.RepositoryTypeOwner).
		Return(domain.NewPage([]domain.Repository{{Name: "widgets"}}, opts), nil)

	rec := doGet(e, "/repositories/acme?type=owner")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"widgets"`)
}

func TestFiles(t *testing.T) {
	e, browser, _ := setupServer(t)
	browser.On("ListFiles", mock.Anything, "acme", "widgets", "docs").Return([]domain.FileItem{{Name: "a.md", Path: "docs/a.md", Type: "file"}}, nil)
	browser.On("GetFileContent", mock.Anything, "acme", "widgets", "docs/a b.md").Return(&domain.FileContent{Name: "a b.md", Content: "aGk=", Encoding: "base64"}, nil)
	browser.On("GetFileContent", mock.Anything, "acme", "widgets", "docs").Return(nil, domain.ErrNotAFile)

	rec := doGet(e, "/repositories/acme/widgets/files?path=docs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"docs/a.md"`)

	rec = doGet(e, "/repositories/acme/widgets/files/docs/a%20b.md")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"encoding":"base64"`)

	rec = doGet(e, "/repositories/acme/widgets/files/docs")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeNotAFile, decodeError(t, rec).Code)
}

func TestRateLimit(t *testing.T) {
	e, browser, _ := setupServer(t)
	browser.On("RateLimit", mock.Anything).Return(&domain.RateLimit{Limit: 5000, Remaining: 12}, nil)

	rec := doGet(e, "/rate_limit")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"remaining":12`)
}

func TestInvalidQueries(t *testing.T) {
	testCases := []struct {
		name   string
		target string
	}{
		{name: "unknown state", target: "/repositories/acme/widgets/pulls/approvers?state=merged"},
		{name: "page below one", target: "/repositories/acme/approvers?page=0"},
		{name: "per page above limit", target: "/repositories/acme/widgets/pulls?per_page=101"},
		{name: "non numeric page", target: "/repositories/acme/widgets/pulls?page=two"},
		{name: "unknown repository type", target: "/repositories/acme?type=forks"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, _ := setupServer(t)

			rec := doGet(e, tc.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, codeInvalidRequest, decodeError(t, rec).Code)
		})
	}
}

func TestUpstreamErrors(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectStatus int
		expectCode   string
		expectMsg    string
	}{
		{
			name:         "upstream status is kept",
			err:          &domain.UpstreamError{Op: "list organization repositories", StatusCode: http.StatusNotFound, Message: "Not Found"},
			expectStatus: http.StatusNotFound,
			expectCode:   codeUpstreamError,
			expectMsg:    "Not Found",
		},
		{
			name:         "transport failure",
			err:          &domain.TransportError{Op: "list pull requests", Err: errors.New("connection reset")},
			expectStatus: http.StatusBadGateway,
			expectCode:   codeUpstreamUnavailable,
			expectMsg:    "list pull requests: connection reset",
		},
		{
			name:         "deadline exceeded",
			err:          &domain.TransportError{Op: "list reviews", Err: context.DeadlineExceeded},
			expectStatus: http.StatusGatewayTimeout,
			expectCode:   codeTimeout,
			expectMsg:    "upstream request timed out",
		},
		{
			name:         "unknown failure",
			err:          errors.New("boom"),
			expectStatus: http.StatusInternalServerError,
			expectCode:   codeInternalError,
			expectMsg:    "boom",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, aggregator := setupServer(t)
			aggregator.On("OwnerApprovers", mock.Anything, "acme", domain.PullRequestStateAll, domain.DefaultListOptions()).Return(nil, tc.err)

			rec := doGet(e, "/repositories/acme/approvers")

			assert.Equal(t, tc.expectStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.expectCode, body.Code)
			assert.Equal(t, tc.expectMsg, body.Message)
		})
	}
}
