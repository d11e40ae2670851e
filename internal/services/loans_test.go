package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanScenario(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()

	reqID, err := h.ledger.CreateLoanRequest(ctx, as("borrower"), LoanRequestInput{Amount: 100, InterestRate: 10, Duration: 86400})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), reqID)

	_, err = h.ledger.AcceptLoanRequest(ctx, as("lender").paying(99), reqID)
	require.ErrorIs(t, err, ErrDepositTooLow)
	assert.False(t, h.state.requests[reqID].Fulfilled)

	loanID, err := h.ledger.AcceptLoanRequest(ctx, as("lender").paying(100), reqID)
	require.NoError(t, err)
	loan, err := h.ledger.Loan(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, "borrower", loan.Borrower)
	assert.Equal(t, "lender", loan.Lender)
	assert.Equal(t, t0, loan.StartTime)
	require.Len(t, h.notifier.transfers, 1)
	assert.Equal(t, ReasonLoanDisbursement, h.notifier.transfers[0].Reason)
	assert.Equal(t, "borrower", h.notifier.transfers[0].Recipient)

	_, err = h.ledger.AcceptLoanRequest(ctx, as("other").paying(100), reqID)
	require.ErrorIs(t, err, ErrAlreadyFulfilled)

	_, err = h.ledger.RepayLoan(ctx, as("lender").paying(110), loanID)
	require.ErrorIs(t, err, ErrNotBorrower)
	_, err = h.ledger.RepayLoan(ctx, as("borrower").paying(109), loanID)
	require.ErrorIs(t, err, ErrDepositTooLow)
	assert.False(t, h.state.loans[loanID].Repaid)

	transfer, err := h.ledger.RepayLoan(ctx, as("borrower").paying(110), loanID)
	require.NoError(t, err)
	assert.Equal(t, "lender", transfer.Recipient)
	assert.Equal(t, uint64(110), transfer.Amount)
	assert.Equal(t, ReasonLoanRepayment, transfer.Reason)

	_, err = h.ledger.RepayLoan(ctx, as("borrower").paying(110), loanID)
	require.ErrorIs(t, err, ErrAlreadyRepaid)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRepaymentFloorsInterest(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()
	reqID, err := h.ledger.CreateLoanRequest(ctx, as("borrower"), LoanRequestInput{Amount: 99, InterestRate: 10})
	require.NoError(t, err)
	loanID, err := h.ledger.AcceptLoanRequest(ctx, as("lender").paying(99), reqID)
	require.NoError(t, err)

	transfer, err := h.ledger.RepayLoan(ctx, as("borrower").paying(200), loanID)
	require.NoError(t, err)
	assert.Equal(t, uint64(108), transfer.Amount)
}

func TestLoanLookupsAndListing(t *testing.T) {
	h := newHarness(t, defaultOptions())
	ctx := context.Background()

	_, err := h.ledger.LoanRequest(ctx, 7)
	require.ErrorIs(t, err, ErrRequestNotFound)
	_, err = h.ledger.Loan(ctx, 7)
	require.ErrorIs(t, err, ErrLoanNotFound)
	_, err = h.ledger.AcceptLoanRequest(ctx, as("lender").paying(1), 7)
	require.ErrorIs(t, err, ErrRequestNotFound)
	_, err = h.ledger.RepayLoan(ctx, as("borrower").paying(1), 7)
	require.ErrorIs(t, err, ErrLoanNotFound)

	for i := 0; i < 3; i++ {
		_, err := h.ledger.CreateLoanRequest(ctx, as("borrower"), LoanRequestInput{Amount: 10})
		require.NoError(t, err)
	}
	reqs, err := h.ledger.LoanRequests(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	_, err = h.ledger.AcceptLoanRequest(ctx, as("lender").paying(10), 2)
	require.NoError(t, err)
	loans, err := h.ledger.Loans(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, uint64(2), loans[0].RequestID)
}
