package usecase

import (
	"sort"

	"github.com/naka-gawa/github-approvers/internal/domain"
)

type approverEntry struct {
	approver domain.Approver
	repos    map[string]struct{}
}

// approverTable accumulates approvals keyed by login and remembers the order in which
// logins were first seen, which breaks ranking ties.
type approverTable struct {
	entries map[string]*approverEntry
	order   []string
}

func newApproverTable() *approverTable {
	return &approverTable{entries: make(map[string]*approverEntry)}
}

// fold counts every approval in reviews towards its author within repo.
func (t *approverTable) fold(repo string, reviews []domain.Review) {
	for _, review := range reviews {
		if !review.IsApproval() {
			continue
		}
		login := review.User.Login
		// Deleted accounts come back without a user.
		if login == "" {
			continue
		}
		entry, ok := t.entries[login]
		if !ok {
			entry = &approverEntry{
				approver: domain.Approver{
					Login:        login,
					AvatarURL:    review.User.AvatarURL,
					HTMLURL:      review.User.HTMLURL,
					Repositories: []string{},
				},
				repos: make(map[string]struct{}),
			}
			t.entries[login] = entry
			t.order = append(t.order, login)
		}
		entry.approver.ApprovalCount++
		if _, seen := entry.repos[repo]; !seen {
			entry.repos[repo] = struct{}{}
			entry.approver.Repositories = append(entry.approver.Repositories, repo)
		}
	}
}

// ranked projects the table, most approvals first and ties in first-seen order.
func (t *approverTable) ranked() []domain.Approver {
	approvers := make([]domain.Approver, 0, len(t.order))
	for _, login := range t.order {
		a := t.entries[login].approver
		a.Repositories = append([]string(nil), a.Repositories...)
		approvers = append(approvers, a)
	}
	sort.SliceStable(approvers, func(i, j int) bool {
		return approvers[i].ApprovalCount > approvers[j].ApprovalCount
	})
	return approvers
}
