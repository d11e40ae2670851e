package services

import (
	"context"
	"time"

	"fundchain/internal/models"
	"fundchain/internal/store"
)

type ProfileStore interface {
	Create(ctx context.Context, tx store.Execer, accountID, username string, bio *string) error
	Get(ctx context.Context, accountID string) (models.UserProfile, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.UserProfile, error)
	Exists(ctx context.Context, accountID string) (bool, error)
	UpdateBio(ctx context.Context, tx store.Execer, accountID string, bio *string) (int64, error)
	SetKYCVerified(ctx context.Context, tx store.Execer, accountID string) (int64, error)
	Delete(ctx context.Context, tx store.Execer, accountID string) (int64, error)
	AddContribution(ctx context.Context, tx store.Execer, accountID string, campaignID uint64) error
	AddCreatedCampaign(ctx context.Context, tx store.Execer, accountID string, campaignID uint64) error
}

type RegistryStore interface {
	AddVerified(ctx context.Context, tx store.Execer, accountID string) error
	RemoveBanned(ctx context.Context, tx store.Execer, accountID string) error
	IsBanned(ctx context.Context, q store.Getter, accountID string) (bool, error)
	Status(ctx context.Context, accountID string) (store.RegistryStatus, error)
}

type CampaignStore interface {
	Create(ctx context.Context, tx store.Execer, c models.Campaign) error
	GetForUpdate(ctx context.Context, tx store.Getter, id uint64) (models.Campaign, error)
	Get(ctx context.Context, id uint64) (models.Campaign, error)
	List(ctx context.Context, limit, offset int) ([]models.Campaign, error)
	Contributions(ctx context.Context, q store.Selecter, id uint64) ([]models.Contribution, error)
	CountContributions(ctx context.Context, tx store.Getter, id uint64) (int64, error)
	InsertContribution(ctx context.Context, tx store.Execer, id uint64, contributor string, amount uint64) error
	SetTotal(ctx context.Context, tx store.Execer, id, total uint64) error
	MarkClaimed(ctx context.Context, tx store.Execer, id uint64) (bool, error)
	SetAmountRequired(ctx context.Context, tx store.Execer, id, amount uint64) error
	Delete(ctx context.Context, tx store.Execer, id uint64) error
	ContributorTotal(ctx context.Context, contributor string) (uint64, error)
	ContributorCampaignTotal(ctx context.Context, id uint64, contributor string) (uint64, error)
}

type StatsStore interface {
	Create(ctx context.Context, tx store.Execer, campaignID uint64) error
	Get(ctx context.Context, campaignID uint64) (models.CampaignStats, error)
	GetForUpdate(ctx context.Context, tx store.Getter, campaignID uint64) (models.CampaignStats, error)
	AddFunds(ctx context.Context, tx store.Execer, campaignID, amount uint64) error
	RecordWithdrawal(ctx context.Context, tx store.Execer, campaignID, amount uint64) (int64, error)
	InsertLog(ctx context.Context, tx store.Execer, log models.WithdrawalLog) error
	ListLogs(ctx context.Context, campaignID uint64) ([]models.WithdrawalLog, error)
}

type LoanStore interface {
	CreateRequest(ctx context.Context, tx store.Execer, r models.LoanRequest) error
	GetRequest(ctx context.Context, id uint64) (models.LoanRequest, error)
	GetRequestForUpdate(ctx context.Context, tx store.Getter, id uint64) (models.LoanRequest, error)
	ListRequests(ctx context.Context, limit, offset int) ([]models.LoanRequest, error)
	MarkFulfilled(ctx context.Context, tx store.Execer, id uint64) (bool, error)
	CreateLoan(ctx context.Context, tx store.Execer, l models.Loan) error
	GetLoan(ctx context.Context, id uint64) (models.Loan, error)
	GetLoanForUpdate(ctx context.Context, tx store.Getter, id uint64) (models.Loan, error)
	ListLoans(ctx context.Context, limit, offset int) ([]models.Loan, error)
	MarkRepaid(ctx context.Context, tx store.Execer, id uint64, at time.Time) (bool, error)
}

type ProposalStore interface {
	Create(ctx context.Context, tx store.Execer, p models.Proposal) error
	Get(ctx context.Context, id uint64) (models.Proposal, error)
	GetForUpdate(ctx context.Context, tx store.Getter, id uint64) (models.Proposal, error)
	List(ctx context.Context, limit, offset int) ([]models.Proposal, error)
	RecordVoter(ctx context.Context, tx store.Execer, id uint64, voter string, support bool) (bool, error)
	AddVote(ctx context.Context, tx store.Execer, id uint64, support bool) error
	MarkExecuted(ctx context.Context, tx store.Execer, id uint64, at time.Time) (bool, error)
}

type MemberStore interface {
	Append(ctx context.Context, tx store.Execer, accountID string) error
	IsMember(ctx context.Context, q store.Getter, accountID string) (bool, error)
	Contains(ctx context.Context, accountID string) (bool, error)
	Count(ctx context.Context, q store.Getter) (uint64, error)
	List(ctx context.Context) ([]string, error)
}

type TreasuryStore interface {
	Add(ctx context.Context, tx store.Getter, amount uint64) (uint64, error)
	BalanceForUpdate(ctx context.Context, q store.Getter) (uint64, error)
	Balance(ctx context.Context) (uint64, error)
}

type CounterStore interface {
	Next(ctx context.Context, tx store.Getter, name string) (uint64, error)
}

type TransferStore interface {
	Insert(ctx context.Context, tx store.Execer, t models.Transfer) error
	ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Transfer, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

// TransferNotifier is told about every transfer once it is committed.
type TransferNotifier interface {
	NotifyTransfer(t models.Transfer)
}

// ProfileCache fronts profile reads. Implementations swallow their own
// failures; a miss always falls through to the store.
type ProfileCache interface {
	GetProfile(ctx context.Context, accountID string) (models.UserProfile, bool)
	SetProfile(ctx context.Context, profile models.UserProfile)
	Invalidate(ctx context.Context, accountIDs ...string)
}
