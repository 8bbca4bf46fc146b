package domain

// Approver holds the approval activity of a single user.
// Repositories lists every repository the user approved in, in first-approval order.
type Approver struct {
	Login         string   `json:"login"`
	AvatarURL     string   `json:"avatar_url"`
	HTMLURL       string   `json:"html_url"`
	ApprovalCount int      `json:"approval_count"`
	Repositories  []string `json:"repositories"`
}

// ApprovalSummary describes the distribution of approvals over a ranked approver list.
type ApprovalSummary struct {
	Approvers      int     `json:"approvers"`
	TotalApprovals int     `json:"total_approvals"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Max            int     `json:"max"`
}
