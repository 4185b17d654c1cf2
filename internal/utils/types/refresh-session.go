package types

type RefreshSession struct {
	UserId   string `json:"userId"`
	JTI      string `json:"jti"`
	IssueAt  int64  `json:"issue_at"`
	ExpireAt int64  `json:"expires_refresh"`
	Status   string `json:"status"`
}
