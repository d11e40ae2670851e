package services

import (
	"math"
	"strconv"
	"time"

	"fundchain/internal/models"
)

// Call carries what the host supplies with every operation: who is calling,
// how much value they attached and the timestamp to evaluate deadlines at.
type Call struct {
	Caller  string
	Deposit uint64
	Now     time.Time
}

func (c Call) validate() error {
	if c.Caller == "" {
		return ErrCallerRequired
	}
	return nil
}

func (c Call) requireNoDeposit() error {
	if c.Deposit != 0 {
		return ErrDepositNotAllowed
	}
	return nil
}

const (
	TransferPending = "pending"

	ReasonCampaignWithdraw      = "campaign_withdraw"
	ReasonCampaignWithdrawFunds = "campaign_withdraw_funds"
	ReasonCampaignCancelRefund  = "campaign_cancel_refund"
	ReasonCampaignFailedRefund  = "campaign_failed_refund"
	ReasonLoanDisbursement      = "loan_disbursement"
	ReasonLoanRepayment         = "loan_repayment"
)

// effects collects what one operation did, for the outbox, the audit log
// and post-commit notification.
type effects struct {
	entityType string
	entityID   string
	transfers  []models.Transfer
	profiles   []string
	data       map[string]any
}

func (e *effects) target(entityType string, id uint64) {
	e.entityType = entityType
	e.entityID = strconv.FormatUint(id, 10)
}

func (e *effects) targetAccount(accountID string) {
	e.entityType = "account"
	e.entityID = accountID
}

// pay queues a transfer. Zero amounts are dropped.
func (e *effects) pay(to string, amount uint64, reason string) {
	if amount == 0 {
		return
	}
	e.transfers = append(e.transfers, models.Transfer{
		Recipient:  to,
		Amount:     amount,
		Reason:     reason,
		EntityType: e.entityType,
		EntityID:   e.entityID,
	})
}

func (e *effects) touch(accountID string) {
	e.profiles = append(e.profiles, accountID)
}

func (e *effects) set(key string, value any) {
	if e.data == nil {
		e.data = map[string]any{}
	}
	e.data[key] = value
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page converts a from/limit pair into a bounded limit and offset.
func Page(from, limit uint64) (int, int) {
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if from > math.MaxInt32 {
		from = math.MaxInt32
	}
	return int(limit), int(from)
}
