package store

import (
	"context"
	"time"

	"fundchain/internal/models"
)

type ProposalStore struct {
	db DB
}

func NewProposalStore(db DB) *ProposalStore {
	return &ProposalStore{db: db}
}

const proposalColumns = `id, proposer, description, votes_for, votes_against, executed`

func (s *ProposalStore) Create(ctx context.Context, tx Execer, p models.Proposal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO proposals (id, proposer, description)
		VALUES ($1, $2, $3)
	`, p.ID, p.Proposer, p.Description)
	return err
}

func (s *ProposalStore) Get(ctx context.Context, id uint64) (models.Proposal, error) {
	var row models.Proposal
	err := s.db.GetContext(ctx, &row, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	return row, err
}

func (s *ProposalStore) GetForUpdate(ctx context.Context, tx Getter, id uint64) (models.Proposal, error) {
	var row models.Proposal
	err := tx.GetContext(ctx, &row, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, id)
	return row, err
}

func (s *ProposalStore) List(ctx context.Context, limit, offset int) ([]models.Proposal, error) {
	rows := []models.Proposal{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+proposalColumns+`
		FROM proposals
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

// RecordVoter stores the voter's ballot. It reports false when the voter
// already has a ballot on the proposal.
func (s *ProposalStore) RecordVoter(ctx context.Context, tx Execer, id uint64, voter string, support bool) (bool, error) {
	n, err := rowsAffected(tx.ExecContext(ctx, `
		INSERT INTO proposal_votes (proposal_id, voter, support)
		VALUES ($1, $2, $3)
		ON CONFLICT (proposal_id, voter) DO NOTHING
	`, id, voter, support))
	return n == 1, err
}

func (s *ProposalStore) AddVote(ctx context.Context, tx Execer, id uint64, support bool) error {
	query := `UPDATE proposals SET votes_against = votes_against + 1 WHERE id = $1`
	if support {
		query = `UPDATE proposals SET votes_for = votes_for + 1 WHERE id = $1`
	}
	_, err := tx.ExecContext(ctx, query, id)
	return err
}

func (s *ProposalStore) MarkExecuted(ctx context.Context, tx Execer, id uint64, at time.Time) (bool, error) {
	n, err := rowsAffected(tx.ExecContext(ctx, `
		UPDATE proposals
		SET executed = TRUE, executed_at = $2
		WHERE id = $1 AND executed = FALSE
	`, id, at))
	return n == 1, err
}
