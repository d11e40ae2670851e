package store

import "context"

// MemberStore is the ordered trusted-member roster.
type MemberStore struct {
	db DB
}

func NewMemberStore(db DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) Append(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO trusted_members (account_id) VALUES ($1)`, accountID)
	return err
}

func (s *MemberStore) IsMember(ctx context.Context, q Getter, accountID string) (bool, error) {
	var ok bool
	err := q.GetContext(ctx, &ok, `SELECT EXISTS(SELECT 1 FROM trusted_members WHERE account_id = $1)`, accountID)
	return ok, err
}

func (s *MemberStore) Contains(ctx context.Context, accountID string) (bool, error) {
	return s.IsMember(ctx, s.db, accountID)
}

// Count is the roster length, duplicates included.
func (s *MemberStore) Count(ctx context.Context, q Getter) (uint64, error) {
	var n uint64
	err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM trusted_members`)
	return n, err
}

func (s *MemberStore) List(ctx context.Context) ([]string, error) {
	members := []string{}
	err := s.db.SelectContext(ctx, &members, `SELECT account_id FROM trusted_members ORDER BY position`)
	return members, err
}
