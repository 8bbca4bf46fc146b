package domain

import "fmt"

const (
	// DefaultPerPage is the page size used when the caller does not ask for one.
	DefaultPerPage = 30
	// MaxPerPage is the largest page size the upstream API accepts.
	MaxPerPage = 100
)

// Page is one page of results. HasNext is inferred from page fullness because the
// upstream list endpoints do not report totals, so an exactly full last page still
// reports HasNext.
type Page[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	HasNext    bool `json:"has_next"`
}

// NewPage wraps one upstream page of items.
func NewPage[T any](items []T, opts ListOptions) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		TotalCount: len(items),
		Page:       opts.Page,
		PerPage:    opts.PerPage,
		HasNext:    len(items) == opts.PerPage,
	}
}

// SinglePage wraps a complete, unpaginated result.
func SinglePage[T any](items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		TotalCount: len(items),
		Page:       1,
		PerPage:    len(items),
		HasNext:    false,
	}
}

// ListOptions selects a 1-based page of a listing.
type ListOptions struct {
	Page    int
	PerPage int
}

// DefaultListOptions returns the first page with the default page size.
func DefaultListOptions() ListOptions {
	return ListOptions{Page: 1, PerPage: DefaultPerPage}
}

// Validate checks the page bounds accepted by the upstream API.
func (o ListOptions) Validate() error {
	if o.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, o.Page)
	}
	if o.PerPage < 1 || o.PerPage > MaxPerPage {
		return fmt.Errorf("%w: per_page must be between 1 and %d, got %d", ErrInvalidArgument, MaxPerPage, o.PerPage)
	}
	return nil
}

// PullRequestState filters pull request listings.
type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateClosed PullRequestState = "closed"
	PullRequestStateAll    PullRequestState = "all"
)

// Validate rejects states the upstream API does not understand.
func (s PullRequestState) Validate() error {
	switch s {
	case PullRequestStateOpen, PullRequestStateClosed, PullRequestStateAll:
		return nil
	}
	return fmt.Errorf("%w: state must be one of open, closed, all, got %q", ErrInvalidArgument, s)
}

// RepositoryType filters repository listings.
type RepositoryType string

const (
	RepositoryTypeAll    RepositoryType = "all"
	RepositoryTypeOwner  RepositoryType = "owner"
	RepositoryTypeMember RepositoryType = "member"
)

func (t RepositoryType) Validate() error {
	switch t {
	case RepositoryTypeAll, RepositoryTypeOwner, RepositoryTypeMember:
		return nil
	}
	return fmt.Errorf("%w: type must be one of all, owner, member, got %q", ErrInvalidArgument, t)
}
