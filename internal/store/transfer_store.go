package store

import (
	"context"

	"fundchain/internal/models"
)

// TransferStore is the outbox of value movements requested by the ledger.
type TransferStore struct {
	db DB
}

func NewTransferStore(db DB) *TransferStore {
	return &TransferStore{db: db}
}

func (s *TransferStore) Insert(ctx context.Context, tx Execer, t models.Transfer) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transfers (id, recipient, amount, reason, entity_type, entity_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.Recipient, t.Amount, t.Reason, t.EntityType, t.EntityID, t.Status, t.CreatedAt)
	return err
}

func (s *TransferStore) ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Transfer, error) {
	rows := []models.Transfer{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, recipient, amount, reason, entity_type, entity_id, status, created_at
		FROM transfers
		WHERE recipient = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, recipient, limit, offset)
	return rows, err
}
