package mapper

import "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"

type Member struct {
	Points     int64  `json:"points"`
	Tier       string `json:"tier"`
	TotalSpent int64  `json:"totalSpent"`
}

type MemberResponse struct {
	Member Member `json:"member"`
}

func FromAccount(account domain.Account) MemberResponse {
	return MemberResponse{Member: Member{
		Points:     account.PointBalance,
		Tier:       string(account.Tier),
		TotalSpent: account.LifetimeSpend,
	}}
}
