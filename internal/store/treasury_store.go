package store

import "context"

type TreasuryStore struct {
	db DB
}

func NewTreasuryStore(db DB) *TreasuryStore {
	return &TreasuryStore{db: db}
}

// Add credits the treasury and returns the new balance.
func (s *TreasuryStore) Add(ctx context.Context, tx Getter, amount uint64) (uint64, error) {
	var balance uint64
	err := tx.GetContext(ctx, &balance, `
		UPDATE treasury
		SET balance = balance + $1
		WHERE id = 1
		RETURNING balance
	`, amount)
	return balance, err
}

func (s *TreasuryStore) BalanceForUpdate(ctx context.Context, q Getter) (uint64, error) {
	var balance uint64
	err := q.GetContext(ctx, &balance, `SELECT balance FROM treasury WHERE id = 1 FOR UPDATE`)
	return balance, err
}

func (s *TreasuryStore) Balance(ctx context.Context) (uint64, error) {
	var balance uint64
	err := s.db.GetContext(ctx, &balance, `SELECT balance FROM treasury WHERE id = 1`)
	return balance, err
}
