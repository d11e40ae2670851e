package store

import "context"

const (
	CounterCampaign    = "campaign"
	CounterLoanRequest = "loan_request"
	CounterLoan        = "loan"
	CounterProposal    = "proposal"
)

type CounterStore struct {
	db DB
}

func NewCounterStore(db DB) *CounterStore {
	return &CounterStore{db: db}
}

// Next hands out the current value of the named counter and advances it.
// Ids start at zero and are never reused.
func (s *CounterStore) Next(ctx context.Context, tx Getter, name string) (uint64, error) {
	var id uint64
	err := tx.GetContext(ctx, &id, `
		UPDATE counters
		SET value = value + 1
		WHERE name = $1
		RETURNING value - 1
	`, name)
	return id, err
}
