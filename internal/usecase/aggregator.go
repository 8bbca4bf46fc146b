// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

const (
	defaultReviewConcurrency = 4
	defaultOwnerRepoPageSize = domain.MaxPerPage
)

// Source is the part of the GitHub gateway the aggregation depends on.
type Source interface {
	ListRepositories(ctx context.Context, owner string, opts domain.ListOptions, repoType domain.RepositoryType) (*domain.Page[domain.Repository], error)
	ListPullRequests(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.PullRequest], error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]domain.Review, error)
}

// Aggregator is the use case for aggregating pull request approvers.
// It orchestrates the fetching of pull requests and reviews and folds the approvals
// into a ranked list. It keeps no state between calls.
type Aggregator struct {
	source            Source
	logger            *logrus.Logger
	reviewConcurrency int
	ownerRepoPageSize int
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithReviewConcurrency bounds the number of review fetches in flight for one page of
// pull requests. A value of 1 scans strictly sequentially.
func WithReviewConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.reviewConcurrency = n
		}
	}
}

// WithOwnerRepoPageSize sets how many repositories an owner-wide aggregation scans.
func WithOwnerRepoPageSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 && n <= domain.MaxPerPage {
			a.ownerRepoPageSize = n
		}
	}
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(source Source, logger *logrus.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:            source,
		logger:            logger,
		reviewConcurrency: defaultReviewConcurrency,
		ownerRepoPageSize: defaultOwnerRepoPageSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RepoApprovers ranks the approvers of one page of pull requests of owner/repo.
// The page options select the pull requests; the result itself is a single page.
func (a *Aggregator) RepoApprovers(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.Approver], error) {
	if err := validate(state, opts); err != nil {
		return nil, err
	}
	log := a.logger.WithFields(logrus.Fields{"owner": owner, "repository": repo, "state": state, "page": opts.Page})
	log.Debug("Usecase: Starting repository approver aggregation...")

	table := newApproverTable()
	if err := a.collect(ctx, owner, repo, state, opts, table); err != nil {
		return nil, err
	}

	approvers := table.ranked()
	log.WithField("approvers", len(approvers)).Debug("Usecase: Aggregation complete.")
	return domain.SinglePage(approvers), nil
}

// OwnerApprovers ranks the approvers across the repositories of owner. Owner repositories
// are listed once with a fixed large page; the page options apply to every repository's
// pull request listing.
func (a *Aggregator) OwnerApprovers(ctx context.Context, owner string, state domain.PullRequestState, opts domain.ListOptions) (*domain.Page[domain.Approver], error) {
	if err := validate(state, opts); err != nil {
		return nil, err
	}
	log := a.logger.WithFields(logrus.Fields{"owner": owner, "state": state, "page": opts.Page})
	log.Debug("Usecase: Starting owner approver aggregation...")

	repos, err := a.source.ListRepositories(ctx, owner, domain.ListOptions{Page: 1, PerPage: a.ownerRepoPageSize}, domain.RepositoryTypeAll)
	if err != nil {
		return nil, err
	}
	if repos.HasNext {
		log.WithField("repositories", len(repos.Items)).Warn("Owner has more repositories than scanned")
	}

	table := newApproverTable()
	for _, repo := range repos.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.collect(ctx, owner, repo.Name, state, opts, table); err != nil {
			return nil, err
		}
	}

	approvers := table.ranked()
	log.WithFields(logrus.Fields{
		"repositories": len(repos.Items),
		"approvers":    len(approvers),
	}).Debug("Usecase: Aggregation complete.")
	return domain.SinglePage(approvers), nil
}

// collect folds the approvals of one page of pull requests of owner/repo into table.
// Reviews are fetched concurrently but folded in page order only once every fetch has
// succeeded, so a failure leaves table untouched by this repository.
func (a *Aggregator) collect(ctx context.Context, owner, repo string, state domain.PullRequestState, opts domain.ListOptions, table *approverTable) error {
	prs, err := a.source.ListPullRequests(ctx, owner, repo, state, opts)
	if err != nil {
		return err
	}

	reviews := make([][]domain.Review, len(prs.Items))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.reviewConcurrency)
	for i, pr := range prs.Items {
		i, pr := i, pr
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			rs, err := a.source.ListReviews(egCtx, owner, repo, pr.Number)
			if err != nil {
				return fmt.Errorf("reviews of %s/%s#%d: %w", owner, repo, pr.Number, err)
			}
			reviews[i] = rs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, rs := range reviews {
		table.fold(repo, rs)
	}
	a.logger.WithFields(logrus.Fields{
		"repository":    owner + "/" + repo,
		"pull_requests": len(prs.Items),
	}).Debug("Usecase: Folded repository approvals")
	return nil
}

func validate(state domain.PullRequestState, opts domain.ListOptions) error {
	if err := state.Validate(); err != nil {
		return err
	}
	return opts.Validate()
}
