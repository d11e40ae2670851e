package store

import (
	"context"

	"fundchain/internal/models"

	"github.com/lib/pq"
)

type CampaignStore struct {
	db DB
}

func NewCampaignStore(db DB) *CampaignStore {
	return &CampaignStore{db: db}
}

const campaignColumns = `id, creator, title, description, images, campaign_code, amount_required,
	total_contributions, crowdfunding_end_time, claimed`

type contributionRow struct {
	CampaignID  uint64 `db:"campaign_id"`
	Contributor string `db:"contributor"`
	Amount      uint64 `db:"amount"`
}

func (s *CampaignStore) Create(ctx context.Context, tx Execer, c models.Campaign) error {
	images := c.Images
	if images == nil {
		images = pq.StringArray{}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO campaigns (id, creator, title, description, images, campaign_code, amount_required, crowdfunding_end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Creator, c.Title, c.Description, images, c.CampaignCode, c.AmountRequired, c.CrowdfundingEndTime)
	return err
}

// GetForUpdate locks the campaign row. Contributions are not loaded.
func (s *CampaignStore) GetForUpdate(ctx context.Context, tx Getter, id uint64) (models.Campaign, error) {
	var row models.Campaign
	err := tx.GetContext(ctx, &row, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id)
	return row, err
}

func (s *CampaignStore) Get(ctx context.Context, id uint64) (models.Campaign, error) {
	var row models.Campaign
	if err := s.db.GetContext(ctx, &row, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id); err != nil {
		return models.Campaign{}, err
	}
	contributions, err := s.Contributions(ctx, s.db, id)
	if err != nil {
		return models.Campaign{}, err
	}
	row.Contributions = contributions
	return row, nil
}

// List pages through campaigns in creation order.
func (s *CampaignStore) List(ctx context.Context, limit, offset int) ([]models.Campaign, error) {
	var rows []models.Campaign
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+campaignColumns+`
		FROM campaigns
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	ids := make(pq.Int64Array, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, int64(row.ID))
	}
	var contributions []contributionRow
	if err := s.db.SelectContext(ctx, &contributions, `
		SELECT campaign_id, contributor, amount
		FROM contributions
		WHERE campaign_id = ANY($1)
		ORDER BY id
	`, ids); err != nil {
		return nil, err
	}
	byCampaign := make(map[uint64][]models.Contribution, len(rows))
	for _, c := range contributions {
		byCampaign[c.CampaignID] = append(byCampaign[c.CampaignID], models.Contribution{Contributor: c.Contributor, Amount: c.Amount})
	}
	for i := range rows {
		rows[i].Contributions = byCampaign[rows[i].ID]
	}
	return rows, nil
}

// Contributions returns the campaign's contributions in the order they were made.
func (s *CampaignStore) Contributions(ctx context.Context, q Selecter, id uint64) ([]models.Contribution, error) {
	rows := []models.Contribution{}
	err := q.SelectContext(ctx, &rows, `
		SELECT contributor, amount
		FROM contributions
		WHERE campaign_id = $1
		ORDER BY id
	`, id)
	return rows, err
}

func (s *CampaignStore) CountContributions(ctx context.Context, tx Getter, id uint64) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM contributions WHERE campaign_id = $1`, id)
	return count, err
}

func (s *CampaignStore) InsertContribution(ctx context.Context, tx Execer, id uint64, contributor string, amount uint64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO contributions (campaign_id, contributor, amount)
		VALUES ($1, $2, $3)
	`, id, contributor, amount)
	return err
}

func (s *CampaignStore) SetTotal(ctx context.Context, tx Execer, id, total uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE campaigns SET total_contributions = $2 WHERE id = $1`, id, total)
	return err
}

// MarkClaimed flips claimed once. It reports false when the row was
// already claimed.
func (s *CampaignStore) MarkClaimed(ctx context.Context, tx Execer, id uint64) (bool, error) {
	n, err := rowsAffected(tx.ExecContext(ctx, `
		UPDATE campaigns
		SET claimed = TRUE
		WHERE id = $1 AND claimed = FALSE
	`, id))
	return n == 1, err
}

func (s *CampaignStore) SetAmountRequired(ctx context.Context, tx Execer, id, amount uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE campaigns SET amount_required = $2 WHERE id = $1`, id, amount)
	return err
}

func (s *CampaignStore) Delete(ctx context.Context, tx Execer, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	return err
}

func (s *CampaignStore) ContributorTotal(ctx context.Context, contributor string) (uint64, error) {
	var total uint64
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0)::bigint
		FROM contributions
		WHERE contributor = $1
	`, contributor)
	return total, err
}

func (s *CampaignStore) ContributorCampaignTotal(ctx context.Context, id uint64, contributor string) (uint64, error) {
	var total uint64
	err := s.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0)::bigint
		FROM contributions
		WHERE campaign_id = $1 AND contributor = $2
	`, id, contributor)
	return total, err
}
