package store

import (
	"context"
	"time"

	"fundchain/internal/models"
)

type LoanStore struct {
	db DB
}

func NewLoanStore(db DB) *LoanStore {
	return &LoanStore{db: db}
}

const (
	loanRequestColumns = `id, borrower, amount, interest_rate, duration_seconds, fulfilled`
	loanColumns        = `id, request_id, borrower, lender, amount, interest_rate, duration_seconds, start_time, repaid`
)

func (s *LoanStore) CreateRequest(ctx context.Context, tx Execer, r models.LoanRequest) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loan_requests (id, borrower, amount, interest_rate, duration_seconds)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.Borrower, r.Amount, r.InterestRate, r.Duration)
	return err
}

func (s *LoanStore) GetRequest(ctx context.Context, id uint64) (models.LoanRequest, error) {
	var row models.LoanRequest
	err := s.db.GetContext(ctx, &row, `SELECT `+loanRequestColumns+` FROM loan_requests WHERE id = $1`, id)
	return row, err
}

func (s *LoanStore) GetRequestForUpdate(ctx context.Context, tx Getter, id uint64) (models.LoanRequest, error) {
	var row models.LoanRequest
	err := tx.GetContext(ctx, &row, `SELECT `+loanRequestColumns+` FROM loan_requests WHERE id = $1 FOR UPDATE`, id)
	return row, err
}

func (s *LoanStore) ListRequests(ctx context.Context, limit, offset int) ([]models.LoanRequest, error) {
	rows := []models.LoanRequest{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+loanRequestColumns+`
		FROM loan_requests
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

func (s *LoanStore) MarkFulfilled(ctx context.Context, tx Execer, id uint64) (bool, error) {
	n, err := rowsAffected(tx.ExecContext(ctx, `
		UPDATE loan_requests
		SET fulfilled = TRUE
		WHERE id = $1 AND fulfilled = FALSE
	`, id))
	return n == 1, err
}

func (s *LoanStore) CreateLoan(ctx context.Context, tx Execer, l models.Loan) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loans (id, request_id, borrower, lender, amount, interest_rate, duration_seconds, start_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, l.ID, l.RequestID, l.Borrower, l.Lender, l.Amount, l.InterestRate, l.Duration, l.StartTime)
	return err
}

func (s *LoanStore) GetLoan(ctx context.Context, id uint64) (models.Loan, error) {
	var row models.Loan
	err := s.db.GetContext(ctx, &row, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return row, err
}

func (s *LoanStore) GetLoanForUpdate(ctx context.Context, tx Getter, id uint64) (models.Loan, error) {
	var row models.Loan
	err := tx.GetContext(ctx, &row, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
	return row, err
}

func (s *LoanStore) ListLoans(ctx context.Context, limit, offset int) ([]models.Loan, error) {
	rows := []models.Loan{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+loanColumns+`
		FROM loans
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

func (s *LoanStore) MarkRepaid(ctx context.Context, tx Execer, id uint64, at time.Time) (bool, error) {
	n, err := rowsAffected(tx.ExecContext(ctx, `
		UPDATE loans
		SET repaid = TRUE, repaid_at = $2
		WHERE id = $1 AND repaid = FALSE
	`, id, at))
	return n == 1, err
}
