package services

import (
	"context"

	"fundchain/internal/models"
	"fundchain/internal/money"
	"fundchain/internal/store"
)

type governance struct {
	proposals ProposalStore
	members   MemberStore
	treasury  TreasuryStore
	counters  CounterStore
	opts      Options
}

func (g *governance) requireMember(ctx context.Context, tx store.DB, accountID string) error {
	ok, err := g.members.IsMember(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotTrustedMember
	}
	return nil
}

func (g *governance) lookup(ctx context.Context, tx store.DB, id uint64) (models.Proposal, error) {
	p, err := g.proposals.GetForUpdate(ctx, tx, id)
	if err != nil {
		return models.Proposal{}, notFound(err, ErrProposalNotFound)
	}
	return p, nil
}

// AddTrustedMember appends to the roster. Duplicates are kept and count
// towards the majority.
func (l *Ledger) AddTrustedMember(ctx context.Context, call Call, member string) error {
	_, err := l.execute(ctx, call, "add_trusted_member", func(tx store.DB, fx *effects) error {
		if err := l.requirePrivileged(call); err != nil {
			return err
		}
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(member)
		return l.governance.members.Append(ctx, tx, member)
	})
	return err
}

func (l *Ledger) CreateProposal(ctx context.Context, call Call, description string) (uint64, error) {
	g := l.governance
	var id uint64
	_, err := l.execute(ctx, call, "create_proposal", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		if err := g.requireMember(ctx, tx, call.Caller); err != nil {
			return err
		}
		next, err := g.counters.Next(ctx, tx, store.CounterProposal)
		if err != nil {
			return err
		}
		id = next
		fx.target("proposal", id)
		return g.proposals.Create(ctx, tx, models.Proposal{
			ID:          id,
			Proposer:    call.Caller,
			Description: description,
		})
	})
	return id, err
}

// Vote records a ballot from a trusted member. With SingleVote off every
// call counts, which matches the historical behaviour.
func (l *Ledger) Vote(ctx context.Context, call Call, id uint64, support bool) error {
	g := l.governance
	_, err := l.execute(ctx, call, "vote", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.target("proposal", id)
		if err := g.requireMember(ctx, tx, call.Caller); err != nil {
			return err
		}
		p, err := g.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Executed {
			return ErrAlreadyExecuted
		}
		if g.opts.SingleVote {
			first, err := g.proposals.RecordVoter(ctx, tx, id, call.Caller, support)
			if err != nil {
				return err
			}
			if !first {
				return ErrAlreadyVoted
			}
		}
		fx.set("support", support)
		return g.proposals.AddVote(ctx, tx, id, support)
	})
	return err
}

// ExecuteProposal marks a proposal executed once votes_for is strictly
// above half the roster, rounded down. Nothing else is dispatched.
func (l *Ledger) ExecuteProposal(ctx context.Context, call Call, id uint64) error {
	g := l.governance
	_, err := l.execute(ctx, call, "execute_proposal", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.target("proposal", id)
		p, err := g.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Executed {
			return ErrAlreadyExecuted
		}
		count, err := g.members.Count(ctx, tx)
		if err != nil {
			return err
		}
		if p.VotesFor <= count/2 {
			return ErrNotEnoughVotes
		}
		fx.set("votes_for", p.VotesFor)
		fx.set("members", count)
		ok, err := g.proposals.MarkExecuted(ctx, tx, id, call.Now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyExecuted
		}
		return nil
	})
	return err
}

// ContributeToTreasury adds the attached deposit to the treasury and
// returns the new balance.
func (l *Ledger) ContributeToTreasury(ctx context.Context, call Call) (uint64, error) {
	g := l.governance
	var balance uint64
	_, err := l.execute(ctx, call, "contribute_to_treasury", func(tx store.DB, fx *effects) error {
		current, err := g.treasury.BalanceForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := money.Add(current, call.Deposit); err != nil {
			return ErrAmountOverflow
		}
		fx.entityType = "treasury"
		balance, err = g.treasury.Add(ctx, tx, call.Deposit)
		if err != nil {
			return err
		}
		fx.set("balance", balance)
		return nil
	})
	return balance, err
}

func (l *Ledger) Proposal(ctx context.Context, id uint64) (models.Proposal, error) {
	p, err := l.governance.proposals.Get(ctx, id)
	if err != nil {
		return models.Proposal{}, notFound(err, ErrProposalNotFound)
	}
	return p, nil
}

func (l *Ledger) Proposals(ctx context.Context, from, limit uint64) ([]models.Proposal, error) {
	size, offset := Page(from, limit)
	return l.governance.proposals.List(ctx, size, offset)
}

func (l *Ledger) TrustedMembers(ctx context.Context) ([]string, error) {
	return l.governance.members.List(ctx)
}

func (l *Ledger) IsTrustedMember(ctx context.Context, accountID string) (bool, error) {
	return l.governance.members.Contains(ctx, accountID)
}

func (l *Ledger) Treasury(ctx context.Context) (uint64, error) {
	return l.governance.treasury.Balance(ctx)
}
