package store

import "context"

// AccountStore keeps the credentials callers authenticate with.
type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, id, secretHash string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, secret_hash)
		VALUES ($1, $2)
	`, id, secretHash)
	return err
}

// Upsert replaces the secret of an existing account.
func (s *AccountStore) Upsert(ctx context.Context, tx Execer, id, secretHash string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, secret_hash)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET secret_hash = EXCLUDED.secret_hash
	`, id, secretHash)
	return err
}

func (s *AccountStore) GetSecretHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.GetContext(ctx, &hash, `SELECT secret_hash FROM accounts WHERE id = $1`, id)
	return hash, err
}
