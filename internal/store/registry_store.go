package store

import "context"

// RegistryStore holds the verified and banned account sets.
type RegistryStore struct {
	db DB
}

func NewRegistryStore(db DB) *RegistryStore {
	return &RegistryStore{db: db}
}

func (s *RegistryStore) AddVerified(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO verified_users (account_id)
		VALUES ($1)
		ON CONFLICT (account_id) DO NOTHING
	`, accountID)
	return err
}

func (s *RegistryStore) RemoveBanned(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM banned_users WHERE account_id = $1`, accountID)
	return err
}

func (s *RegistryStore) IsBanned(ctx context.Context, q Getter, accountID string) (bool, error) {
	var banned bool
	err := q.GetContext(ctx, &banned, `SELECT EXISTS(SELECT 1 FROM banned_users WHERE account_id = $1)`, accountID)
	return banned, err
}

type RegistryStatus struct {
	Verified bool `db:"verified" json:"verified"`
	Banned   bool `db:"banned" json:"banned"`
}

func (s *RegistryStore) Status(ctx context.Context, accountID string) (RegistryStatus, error) {
	var status RegistryStatus
	err := s.db.GetContext(ctx, &status, `
		SELECT EXISTS(SELECT 1 FROM verified_users WHERE account_id = $1) AS verified,
		       EXISTS(SELECT 1 FROM banned_users WHERE account_id = $1) AS banned
	`, accountID)
	return status, err
}
