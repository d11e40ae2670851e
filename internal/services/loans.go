package services

import (
	"context"

	"fundchain/internal/models"
	"fundchain/internal/money"
	"fundchain/internal/store"
)

type loans struct {
	store    LoanStore
	counters CounterStore
}

type LoanRequestInput struct {
	Amount       uint64
	InterestRate uint8
	// Duration is in seconds.
	Duration uint64
}

// CreateLoanRequest publishes an open request to borrow. Any caller may
// ask; an attached deposit is accepted and only recorded in the audit log.
func (l *Ledger) CreateLoanRequest(ctx context.Context, call Call, in LoanRequestInput) (uint64, error) {
	var id uint64
	_, err := l.execute(ctx, call, "create_loan_request", func(tx store.DB, fx *effects) error {
		if in.Amount > money.MaxUnits {
			return ErrAmountOverflow
		}
		next, err := l.loans.counters.Next(ctx, tx, store.CounterLoanRequest)
		if err != nil {
			return err
		}
		id = next
		fx.target("loan_request", id)
		fx.set("amount", in.Amount)
		fx.set("interest_rate", in.InterestRate)
		return l.loans.store.CreateRequest(ctx, tx, models.LoanRequest{
			ID:           id,
			Borrower:     call.Caller,
			Amount:       in.Amount,
			InterestRate: in.InterestRate,
			Duration:     in.Duration,
		})
	})
	return id, err
}

// AcceptLoanRequest funds an open request with the attached deposit. The
// caller becomes the lender and the requested amount is paid out to the
// borrower.
func (l *Ledger) AcceptLoanRequest(ctx context.Context, call Call, requestID uint64) (uint64, error) {
	var loanID uint64
	_, err := l.execute(ctx, call, "accept_loan_request", func(tx store.DB, fx *effects) error {
		fx.target("loan_request", requestID)
		req, err := l.loans.store.GetRequestForUpdate(ctx, tx, requestID)
		if err != nil {
			return notFound(err, ErrRequestNotFound)
		}
		if req.Fulfilled {
			return ErrAlreadyFulfilled
		}
		if call.Deposit < req.Amount {
			return ErrDepositTooLow
		}
		ok, err := l.loans.store.MarkFulfilled(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyFulfilled
		}
		loanID, err = l.loans.counters.Next(ctx, tx, store.CounterLoan)
		if err != nil {
			return err
		}
		fx.target("loan", loanID)
		fx.set("request_id", requestID)
		if err := l.loans.store.CreateLoan(ctx, tx, models.Loan{
			ID:           loanID,
			RequestID:    requestID,
			Borrower:     req.Borrower,
			Lender:       call.Caller,
			Amount:       req.Amount,
			InterestRate: req.InterestRate,
			Duration:     req.Duration,
			StartTime:    call.Now,
		}); err != nil {
			return err
		}
		fx.pay(req.Borrower, req.Amount, ReasonLoanDisbursement)
		return nil
	})
	return loanID, err
}

// RepayLoan settles a loan in full. The lender receives principal plus flat
// interest; any excess deposit stays with the contract.
func (l *Ledger) RepayLoan(ctx context.Context, call Call, loanID uint64) (models.Transfer, error) {
	fx, err := l.execute(ctx, call, "repay_loan", func(tx store.DB, fx *effects) error {
		fx.target("loan", loanID)
		loan, err := l.loans.store.GetLoanForUpdate(ctx, tx, loanID)
		if err != nil {
			return notFound(err, ErrLoanNotFound)
		}
		if loan.Borrower != call.Caller {
			return ErrNotBorrower
		}
		if loan.Repaid {
			return ErrAlreadyRepaid
		}
		due, err := money.RepaymentDue(loan.Amount, loan.InterestRate)
		if err != nil {
			return ErrAmountOverflow
		}
		if call.Deposit < due {
			return ErrDepositTooLow
		}
		ok, err := l.loans.store.MarkRepaid(ctx, tx, loanID, call.Now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyRepaid
		}
		fx.set("due", due)
		fx.pay(loan.Lender, due, ReasonLoanRepayment)
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	if len(fx.transfers) == 0 {
		return models.Transfer{}, nil
	}
	return fx.transfers[0], nil
}

func (l *Ledger) LoanRequest(ctx context.Context, id uint64) (models.LoanRequest, error) {
	req, err := l.loans.store.GetRequest(ctx, id)
	if err != nil {
		return models.LoanRequest{}, notFound(err, ErrRequestNotFound)
	}
	return req, nil
}

func (l *Ledger) LoanRequests(ctx context.Context, from, limit uint64) ([]models.LoanRequest, error) {
	size, offset := Page(from, limit)
	return l.loans.store.ListRequests(ctx, size, offset)
}

func (l *Ledger) Loan(ctx context.Context, id uint64) (models.Loan, error) {
	loan, err := l.loans.store.GetLoan(ctx, id)
	if err != nil {
		return models.Loan{}, notFound(err, ErrLoanNotFound)
	}
	return loan, nil
}

func (l *Ledger) Loans(ctx context.Context, from, limit uint64) ([]models.Loan, error) {
	size, offset := Page(from, limit)
	return l.loans.store.ListLoans(ctx, size, offset)
}
