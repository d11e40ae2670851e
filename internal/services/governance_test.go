package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) members(t *testing.T, accounts ...string) {
	t.Helper()
	for _, a := range accounts {
		require.NoError(t, h.ledger.AddTrustedMember(context.Background(), as(contract), a))
	}
}

func TestAddTrustedMemberIsPrivileged(t *testing.T) {
	h := newHarness(t, defaultOptions())
	err := h.ledger.AddTrustedMember(context.Background(), as("alice"), "alice")
	require.ErrorIs(t, err, ErrNotPrivileged)
	assert.Empty(t, h.state.members)

	h.members(t, "alice", "alice")
	members, err := h.ledger.TrustedMembers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "alice"}, members)
}

func TestGovernanceScenario(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	h.members(t, "a", "b", "c")

	_, err := h.ledger.CreateProposal(ctx, as("outsider"), "nope")
	require.ErrorIs(t, err, ErrNotTrustedMember)

	id, err := h.ledger.CreateProposal(ctx, as("a"), "fund the garden")
	require.NoError(t, err)
	p, err := h.ledger.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Proposer)
	assert.Zero(t, p.VotesFor)
	assert.Zero(t, p.VotesAgainst)

	require.NoError(t, h.ledger.Vote(ctx, as("b"), id, true))
	err = h.ledger.ExecuteProposal(ctx, as("anyone"), id)
	require.ErrorIs(t, err, ErrNotEnoughVotes)

	require.NoError(t, h.ledger.Vote(ctx, as("c"), id, true))
	require.NoError(t, h.ledger.ExecuteProposal(ctx, as("anyone"), id))

	err = h.ledger.ExecuteProposal(ctx, as("anyone"), id)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = h.ledger.Vote(ctx, as("a"), id, true)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestVoteRequiresMembershipAndProposal(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	h.members(t, "a")

	require.ErrorIs(t, h.ledger.Vote(ctx, as("outsider"), 0, true), ErrNotTrustedMember)
	require.ErrorIs(t, h.ledger.Vote(ctx, as("a"), 0, true), ErrProposalNotFound)
	require.ErrorIs(t, h.ledger.ExecuteProposal(ctx, as("a"), 0), ErrProposalNotFound)
}

func TestSingleVoteRejectsSecondBallot(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	h.members(t, "a", "b", "c")
	id, err := h.ledger.CreateProposal(ctx, as("a"), "p")
	require.NoError(t, err)

	require.NoError(t, h.ledger.Vote(ctx, as("a"), id, true))
	err = h.ledger.Vote(ctx, as("a"), id, false)
	require.ErrorIs(t, err, ErrAlreadyVoted)
	p, err := h.ledger.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.VotesFor)
	assert.Zero(t, p.VotesAgainst)
}

func TestRepeatVotingWhenUnguarded(t *testing.T) {
	opts := defaultOptions()
	opts.SingleVote = false
	h := newHarness(t, opts)
	ctx := context.Background()
	h.members(t, "a", "b", "c")
	id, err := h.ledger.CreateProposal(ctx, as("a"), "p")
	require.NoError(t, err)

	require.NoError(t, h.ledger.Vote(ctx, as("a"), id, true))
	require.NoError(t, h.ledger.Vote(ctx, as("a"), id, true))
	require.NoError(t, h.ledger.ExecuteProposal(ctx, as("a"), id))
}

func TestTreasuryOverflowRejected(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.state.treasury = ^uint64(0) - 1
	_, err := h.ledger.ContributeToTreasury(context.Background(), as("alice").paying(5))
	require.ErrorIs(t, err, ErrAmountOverflow)
	assert.Equal(t, ^uint64(0)-1, h.state.treasury)
}

func TestIsTrustedMember(t *testing.T) {
	h := newHarness(t, defaultOptions())
	h.members(t, "a")
	ok, err := h.ledger.IsTrustedMember(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.ledger.IsTrustedMember(context.Background(), "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTreasury(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()

	balance, err := h.ledger.ContributeToTreasury(ctx, as("alice"))
	require.NoError(t, err)
	assert.Zero(t, balance)

	balance, err = h.ledger.ContributeToTreasury(ctx, as("alice").paying(40))
	require.NoError(t, err)
	assert.Equal(t, uint64(40), balance)
	balance, err = h.ledger.ContributeToTreasury(ctx, as("bob").paying(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)

	got, err := h.ledger.Treasury(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
}

func TestTransfersByRecipient(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	reqID, err := h.ledger.CreateLoanRequest(ctx, as("borrower"), LoanRequestInput{Amount: 5})
	require.NoError(t, err)
	_, err = h.ledger.AcceptLoanRequest(ctx, as("lender").paying(5), reqID)
	require.NoError(t, err)

	got, err := h.ledger.Transfers(ctx, "borrower", 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "loan", got[0].EntityType)
	none, err := h.ledger.Transfers(ctx, "lender", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
