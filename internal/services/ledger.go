package services

import (
	"context"
	"encoding/json"

	"fundchain/internal/config"
	"fundchain/internal/db"
	"fundchain/internal/models"
	"fundchain/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Stores struct {
	Profiles  ProfileStore
	Registry  RegistryStore
	Campaigns CampaignStore
	Stats     StatsStore
	Loans     LoanStore
	Proposals ProposalStore
	Members   MemberStore
	Treasury  TreasuryStore
	Counters  CounterStore
	Transfers TransferStore
	Audit     AuditStore
}

type Options struct {
	// ContractAccount is the only caller allowed to run privileged operations.
	ContractAccount string
	// KYCThreshold is the largest funding goal allowed without KYC.
	KYCThreshold uint64
	// RefundMode is config.RefundIndividual or config.RefundPooled.
	RefundMode string
	// SingleVote limits every trusted member to one ballot per proposal.
	SingleVote bool
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ContractAccount: cfg.ContractAccount,
		KYCThreshold:    cfg.KYCThreshold,
		RefundMode:      cfg.RefundMode,
		SingleVote:      cfg.SingleVote,
	}
}

// Ledger is the root state. It owns every collection through its
// components and runs each mutating operation as one serializable
// transaction, recording requested transfers in the outbox before commit.
type Ledger struct {
	txRunner   db.TxRunner
	opts       Options
	registry   *registry
	directory  *directory
	campaigns  *campaigns
	loans      *loans
	governance *governance
	transfers  TransferStore
	audit      AuditStore
	notifier   TransferNotifier
	cache      ProfileCache
}

func NewLedger(txRunner db.TxRunner, stores Stores, opts Options, notifier TransferNotifier, cache ProfileCache) *Ledger {
	if cache == nil {
		cache = noopCache{}
	}
	dir := &directory{profiles: stores.Profiles}
	return &Ledger{
		txRunner:  txRunner,
		opts:      opts,
		registry:  &registry{store: stores.Registry},
		directory: dir,
		campaigns: &campaigns{
			store:    stores.Campaigns,
			stats:    stores.Stats,
			counters: stores.Counters,
			profiles: stores.Profiles,
			opts:     opts,
		},
		loans: &loans{store: stores.Loans, counters: stores.Counters},
		governance: &governance{
			proposals: stores.Proposals,
			members:   stores.Members,
			treasury:  stores.Treasury,
			counters:  stores.Counters,
			opts:      opts,
		},
		transfers: stores.Transfers,
		audit:     stores.Audit,
		notifier:  notifier,
		cache:     cache,
	}
}

func (l *Ledger) isPrivileged(call Call) bool {
	return l.opts.ContractAccount != "" && call.Caller == l.opts.ContractAccount
}

func (l *Ledger) requirePrivileged(call Call) error {
	if !l.isPrivileged(call) {
		return ErrNotPrivileged
	}
	return nil
}

// execute runs fn in a transaction. Transfers queued by fn are written to
// the outbox and the operation is audited in the same transaction; they
// are only announced once the commit succeeded.
func (l *Ledger) execute(ctx context.Context, call Call, op string, fn func(tx store.DB, fx *effects) error) (*effects, error) {
	if err := call.validate(); err != nil {
		return nil, err
	}
	var fx *effects
	err := l.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		fx = &effects{}
		if err := fn(tx, fx); err != nil {
			return err
		}
		for i := range fx.transfers {
			t := &fx.transfers[i]
			t.ID = uuid.NewString()
			t.Status = TransferPending
			t.CreatedAt = call.Now
			if err := l.transfers.Insert(ctx, tx, *t); err != nil {
				return err
			}
		}
		fx.set("deposit", call.Deposit)
		data, err := json.Marshal(fx.data)
		if err != nil {
			return err
		}
		return l.audit.Log(ctx, tx, call.Caller, op, fx.entityType, fx.entityID, string(data))
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"op":     op,
			"caller": call.Caller,
			"error":  err.Error(),
		}).Debug("ledger operation rejected")
		return nil, err
	}
	l.afterCommit(ctx, call, op, fx)
	return fx, nil
}

func (l *Ledger) afterCommit(ctx context.Context, call Call, op string, fx *effects) {
	logrus.WithFields(logrus.Fields{
		"op":          op,
		"caller":      call.Caller,
		"entity_type": fx.entityType,
		"entity_id":   fx.entityID,
		"deposit":     call.Deposit,
	}).Info("ledger operation committed")
	if len(fx.profiles) > 0 {
		l.cache.Invalidate(ctx, fx.profiles...)
	}
	for _, t := range fx.transfers {
		logrus.WithFields(logrus.Fields{
			"transfer_id": t.ID,
			"to":          t.Recipient,
			"amount":      t.Amount,
			"reason":      t.Reason,
		}).Info("transfer requested")
		if l.notifier != nil {
			l.notifier.NotifyTransfer(t)
		}
	}
}

// Transfers lists the transfers requested in favour of recipient, newest first.
func (l *Ledger) Transfers(ctx context.Context, recipient string, from, limit uint64) ([]models.Transfer, error) {
	size, offset := Page(from, limit)
	return l.transfers.ListByRecipient(ctx, recipient, size, offset)
}

// AuditLog is readable by the contract account only.
func (l *Ledger) AuditLog(ctx context.Context, call Call, from, limit uint64) ([]store.AuditEntry, error) {
	if err := l.requirePrivileged(call); err != nil {
		return nil, err
	}
	size, offset := Page(from, limit)
	return l.audit.List(ctx, size, offset)
}

type noopCache struct{}

func (noopCache) GetProfile(context.Context, string) (models.UserProfile, bool) {
	return models.UserProfile{}, false
}
func (noopCache) SetProfile(context.Context, models.UserProfile) {}
func (noopCache) Invalidate(context.Context, ...string)          {}
