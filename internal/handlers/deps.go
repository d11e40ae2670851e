package handlers

import (
	"context"
	"time"

	"fundchain/internal/models"
	"fundchain/internal/services"
	"fundchain/internal/store"
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, id, secretHash string) error
	GetSecretHash(ctx context.Context, id string) (string, error)
}

// Ledger is the operation surface the HTTP layer drives.
type Ledger interface {
	VerifyUser(ctx context.Context, call services.Call, actor string) error
	UnbanUser(ctx context.Context, call services.Call, actor string) error
	RegistryStatus(ctx context.Context, actor string) (store.RegistryStatus, error)

	CreateProfile(ctx context.Context, call services.Call, username string, bio *string) error
	UpdateProfile(ctx context.Context, call services.Call, bio *string) error
	VerifyKYC(ctx context.Context, call services.Call, accountID string) error
	RemoveProfile(ctx context.Context, call services.Call, accountID string) error
	Profile(ctx context.Context, accountID string) (models.UserProfile, error)
	ProfileExists(ctx context.Context, accountID string) (bool, error)

	CreateCampaign(ctx context.Context, call services.Call, in services.CampaignInput) (uint64, error)
	Contribute(ctx context.Context, call services.Call, id uint64) error
	Withdraw(ctx context.Context, call services.Call, id uint64) (models.Transfer, error)
	WithdrawFunds(ctx context.Context, call services.Call, id uint64, recipient string) (models.Transfer, error)
	CancelCampaign(ctx context.Context, call services.Call, id uint64) ([]models.Transfer, error)
	RefundContributors(ctx context.Context, call services.Call, id uint64) ([]models.Transfer, error)
	ModifyFundingGoal(ctx context.Context, call services.Call, id, goal uint64) error
	Campaign(ctx context.Context, id uint64) (models.Campaign, error)
	Campaigns(ctx context.Context, from, limit uint64) ([]models.Campaign, error)
	CampaignStatus(ctx context.Context, id uint64, now time.Time) (string, error)
	CampaignContributions(ctx context.Context, id uint64) ([]models.Contribution, error)
	UserTotalContributions(ctx context.Context, accountID string) (uint64, error)
	UserCampaignContribution(ctx context.Context, id uint64, accountID string) (uint64, error)
	CampaignStats(ctx context.Context, id uint64) (models.CampaignStats, error)
	WithdrawalLogs(ctx context.Context, id uint64) ([]models.WithdrawalLog, error)

	CreateLoanRequest(ctx context.Context, call services.Call, in services.LoanRequestInput) (uint64, error)
	AcceptLoanRequest(ctx context.Context, call services.Call, requestID uint64) (uint64, error)
	RepayLoan(ctx context.Context, call services.Call, loanID uint64) (models.Transfer, error)
	LoanRequest(ctx context.Context, id uint64) (models.LoanRequest, error)
	LoanRequests(ctx context.Context, from, limit uint64) ([]models.LoanRequest, error)
	Loan(ctx context.Context, id uint64) (models.Loan, error)
	Loans(ctx context.Context, from, limit uint64) ([]models.Loan, error)

	AddTrustedMember(ctx context.Context, call services.Call, member string) error
	CreateProposal(ctx context.Context, call services.Call, description string) (uint64, error)
	Vote(ctx context.Context, call services.Call, id uint64, support bool) error
	ExecuteProposal(ctx context.Context, call services.Call, id uint64) error
	ContributeToTreasury(ctx context.Context, call services.Call) (uint64, error)
	Proposal(ctx context.Context, id uint64) (models.Proposal, error)
	Proposals(ctx context.Context, from, limit uint64) ([]models.Proposal, error)
	TrustedMembers(ctx context.Context) ([]string, error)
	IsTrustedMember(ctx context.Context, accountID string) (bool, error)
	Treasury(ctx context.Context) (uint64, error)

	Transfers(ctx context.Context, recipient string, from, limit uint64) ([]models.Transfer, error)
	AuditLog(ctx context.Context, call services.Call, from, limit uint64) ([]store.AuditEntry, error)
}
