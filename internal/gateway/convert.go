package gateway

import (
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

func toUser(u *github.User) domain.User {
	return domain.User{
		Login:     u.GetLogin(),
		AvatarURL: u.GetAvatarURL(),
		HTMLURL:   u.GetHTMLURL(),
	}
}

func toRepository(r *github.Repository) domain.Repository {
	return domain.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.Description,
		Private:     r.GetPrivate(),
		HTMLURL:     r.GetHTMLURL(),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}

func toPullRequest(pr *github.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		ID:        pr.GetID(),
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		HTMLURL:   pr.GetHTMLURL(),
		CreatedAt: pr.GetCreatedAt().Time,
		MergedAt:  timePtr(pr.MergedAt),
		User:      toUser(pr.GetUser()),
	}
}

func toReview(r *github.PullRequestReview) domain.Review {
	return domain.Review{
		ID:          r.GetID(),
		User:        toUser(r.GetUser()),
		State:       r.GetState(),
		SubmittedAt: timePtr(r.SubmittedAt),
	}
}

func toFileItem(c *github.RepositoryContent) domain.FileItem {
	return domain.FileItem{
		Name:        c.GetName(),
		Path:        c.GetPath(),
		Type:        c.GetType(),
		Size:        c.GetSize(),
		HTMLURL:     c.GetHTMLURL(),
		DownloadURL: c.DownloadURL,
	}
}

func timePtr(ts *github.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}
