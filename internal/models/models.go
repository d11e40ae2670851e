package models

import (
	"time"

	"github.com/lib/pq"
)

type UserProfile struct {
	AccountID        string        `db:"account_id" json:"account_id"`
	Username         string        `db:"username" json:"username"`
	Bio              *string       `db:"bio" json:"bio"`
	KYCVerified      bool          `db:"kyc_verified" json:"kyc_verified"`
	Contributions    pq.Int64Array `db:"contributions" json:"contributions"`
	CreatedCampaigns pq.Int64Array `db:"created_campaigns" json:"created_campaigns"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
}

type Contribution struct {
	Contributor string `db:"contributor" json:"contributor"`
	Amount      uint64 `db:"amount" json:"amount"`
}

type Campaign struct {
	ID                  uint64         `db:"id" json:"id"`
	Creator             string         `db:"creator" json:"creator"`
	Title               string         `db:"title" json:"title"`
	Description         string         `db:"description" json:"description"`
	Images              pq.StringArray `db:"images" json:"images"`
	CampaignCode        string         `db:"campaign_code" json:"campaign_code"`
	AmountRequired      uint64         `db:"amount_required" json:"amount_required"`
	TotalContributions  uint64         `db:"total_contributions" json:"total_contributions"`
	CrowdfundingEndTime time.Time      `db:"crowdfunding_end_time" json:"crowdfunding_end_time"`
	Claimed             bool           `db:"claimed" json:"claimed"`
	Contributions       []Contribution `db:"-" json:"contributions"`
}

func (c Campaign) GoalReached() bool {
	return c.TotalContributions >= c.AmountRequired
}

const (
	StatusClaimed = "Funds claimed"
	StatusEnded   = "Crowdfunding ended"
	StatusReached = "Funding goal reached"
	StatusActive  = "Crowdfunding active"
)

// Status reports the campaign phase at now. The checks are ordered: a
// claimed campaign stays claimed, an expired one reads as ended even if
// the goal was met.
func (c Campaign) Status(now time.Time) string {
	switch {
	case c.Claimed:
		return StatusClaimed
	case now.After(c.CrowdfundingEndTime):
		return StatusEnded
	case c.GoalReached():
		return StatusReached
	default:
		return StatusActive
	}
}

type CampaignStats struct {
	CampaignID          uint64 `db:"campaign_id" json:"campaign_id"`
	TotalFunds          uint64 `db:"total_funds" json:"total_funds"`
	TotalWithdrawn      uint64 `db:"total_withdrawn" json:"total_withdrawn"`
	NumberOfWithdrawals uint64 `db:"number_of_withdrawals" json:"number_of_withdrawals"`
}

type WithdrawalLog struct {
	CampaignID  uint64    `db:"campaign_id" json:"campaign_id"`
	Recipient   string    `db:"recipient" json:"recipient"`
	Amount      uint64    `db:"amount" json:"amount"`
	WithdrawnAt time.Time `db:"withdrawn_at" json:"withdrawn_at"`
}

type LoanRequest struct {
	ID           uint64 `db:"id" json:"id"`
	Borrower     string `db:"borrower" json:"borrower"`
	Amount       uint64 `db:"amount" json:"amount"`
	InterestRate uint8  `db:"interest_rate" json:"interest_rate"`
	Duration     uint64 `db:"duration_seconds" json:"duration"`
	Fulfilled    bool   `db:"fulfilled" json:"fulfilled"`
}

type Loan struct {
	ID           uint64    `db:"id" json:"id"`
	RequestID    uint64    `db:"request_id" json:"request_id"`
	Borrower     string    `db:"borrower" json:"borrower"`
	Lender       string    `db:"lender" json:"lender"`
	Amount       uint64    `db:"amount" json:"amount"`
	InterestRate uint8     `db:"interest_rate" json:"interest_rate"`
	Duration     uint64    `db:"duration_seconds" json:"duration"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	Repaid       bool      `db:"repaid" json:"repaid"`
}

func (l Loan) DueAt() time.Time {
	return l.StartTime.Add(time.Duration(l.Duration) * time.Second)
}

type Proposal struct {
	ID           uint64 `db:"id" json:"id"`
	Proposer     string `db:"proposer" json:"proposer"`
	Description  string `db:"description" json:"description"`
	VotesFor     uint64 `db:"votes_for" json:"votes_for"`
	VotesAgainst uint64 `db:"votes_against" json:"votes_against"`
	Executed     bool   `db:"executed" json:"executed"`
}

// Transfer is a value movement the ledger asked the host to perform.
type Transfer struct {
	ID         string    `db:"id" json:"id"`
	Recipient  string    `db:"recipient" json:"recipient"`
	Amount     uint64    `db:"amount" json:"amount"`
	Reason     string    `db:"reason" json:"reason"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
