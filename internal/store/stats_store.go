package store

import (
	"context"

	"fundchain/internal/models"
)

type StatsStore struct {
	db DB
}

func NewStatsStore(db DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) Create(ctx context.Context, tx Execer, campaignID uint64) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO campaign_stats (campaign_id) VALUES ($1)`, campaignID)
	return err
}

func (s *StatsStore) Get(ctx context.Context, campaignID uint64) (models.CampaignStats, error) {
	var row models.CampaignStats
	err := s.db.GetContext(ctx, &row, `
		SELECT campaign_id, total_funds, total_withdrawn, number_of_withdrawals
		FROM campaign_stats
		WHERE campaign_id = $1
	`, campaignID)
	return row, err
}

func (s *StatsStore) GetForUpdate(ctx context.Context, tx Getter, campaignID uint64) (models.CampaignStats, error) {
	var row models.CampaignStats
	err := tx.GetContext(ctx, &row, `
		SELECT campaign_id, total_funds, total_withdrawn, number_of_withdrawals
		FROM campaign_stats
		WHERE campaign_id = $1
		FOR UPDATE
	`, campaignID)
	return row, err
}

func (s *StatsStore) AddFunds(ctx context.Context, tx Execer, campaignID, amount uint64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE campaign_stats
		SET total_funds = total_funds + $2
		WHERE campaign_id = $1
	`, campaignID, amount)
	return err
}

// RecordWithdrawal bumps the withdrawal aggregates. Zero rows means the
// campaign has no stats record.
func (s *StatsStore) RecordWithdrawal(ctx context.Context, tx Execer, campaignID, amount uint64) (int64, error) {
	return rowsAffected(tx.ExecContext(ctx, `
		UPDATE campaign_stats
		SET total_withdrawn = total_withdrawn + $2,
		    number_of_withdrawals = number_of_withdrawals + 1
		WHERE campaign_id = $1
	`, campaignID, amount))
}

func (s *StatsStore) InsertLog(ctx context.Context, tx Execer, log models.WithdrawalLog) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO withdrawal_logs (campaign_id, recipient, amount, withdrawn_at)
		VALUES ($1, $2, $3, $4)
	`, log.CampaignID, log.Recipient, log.Amount, log.WithdrawnAt)
	return err
}

func (s *StatsStore) ListLogs(ctx context.Context, campaignID uint64) ([]models.WithdrawalLog, error) {
	rows := []models.WithdrawalLog{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT campaign_id, recipient, amount, withdrawn_at
		FROM withdrawal_logs
		WHERE campaign_id = $1
		ORDER BY id
	`, campaignID)
	return rows, err
}
