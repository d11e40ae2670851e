package store

import (
	"context"

	"fundchain/internal/models"
)

type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `account_id, username, bio, kyc_verified, contributions, created_campaigns, created_at`

func (s *ProfileStore) Create(ctx context.Context, tx Execer, accountID, username string, bio *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (account_id, username, bio)
		VALUES ($1, $2, $3)
	`, accountID, username, bio)
	return err
}

func (s *ProfileStore) Get(ctx context.Context, accountID string) (models.UserProfile, error) {
	var row models.UserProfile
	err := s.db.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE account_id = $1`, accountID)
	return row, err
}

func (s *ProfileStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (models.UserProfile, error) {
	var row models.UserProfile
	err := tx.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE account_id = $1 FOR UPDATE`, accountID)
	return row, err
}

func (s *ProfileStore) Exists(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE account_id = $1)`, accountID)
	return exists, err
}

func (s *ProfileStore) UpdateBio(ctx context.Context, tx Execer, accountID string, bio *string) (int64, error) {
	return rowsAffected(tx.ExecContext(ctx, `
		UPDATE profiles
		SET bio = $2, updated_at = NOW()
		WHERE account_id = $1
	`, accountID, bio))
}

func (s *ProfileStore) SetKYCVerified(ctx context.Context, tx Execer, accountID string) (int64, error) {
	return rowsAffected(tx.ExecContext(ctx, `
		UPDATE profiles
		SET kyc_verified = TRUE, updated_at = NOW()
		WHERE account_id = $1
	`, accountID))
}

func (s *ProfileStore) Delete(ctx context.Context, tx Execer, accountID string) (int64, error) {
	return rowsAffected(tx.ExecContext(ctx, `DELETE FROM profiles WHERE account_id = $1`, accountID))
}

// AddContribution records campaignID on the profile once.
func (s *ProfileStore) AddContribution(ctx context.Context, tx Execer, accountID string, campaignID uint64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE profiles
		SET contributions = array_append(contributions, $2::bigint), updated_at = NOW()
		WHERE account_id = $1 AND NOT ($2::bigint = ANY(contributions))
	`, accountID, campaignID)
	return err
}

func (s *ProfileStore) AddCreatedCampaign(ctx context.Context, tx Execer, accountID string, campaignID uint64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE profiles
		SET created_campaigns = array_append(created_campaigns, $2::bigint), updated_at = NOW()
		WHERE account_id = $1
	`, accountID, campaignID)
	return err
}
