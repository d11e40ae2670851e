package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"fundchain/internal/models"
	"fundchain/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type contributionRecord struct {
	campaignID uint64
	models.Contribution
}

type voteKey struct {
	proposal uint64
	voter    string
}

// memState backs every fake store. Failures must be detected before any
// write because the fake transaction cannot roll back.
type memState struct {
	mu            sync.Mutex
	counters      map[string]uint64
	profiles      map[string]models.UserProfile
	verified      map[string]bool
	banned        map[string]bool
	campaigns     map[uint64]models.Campaign
	contributions []contributionRecord
	stats         map[uint64]models.CampaignStats
	logs          []models.WithdrawalLog
	requests      map[uint64]models.LoanRequest
	loans         map[uint64]models.Loan
	proposals     map[uint64]models.Proposal
	votes         map[voteKey]bool
	members       []string
	treasury      uint64
	transfers     []models.Transfer
	audit         []store.AuditEntry
}

func newMemState() *memState {
	return &memState{
		counters:  map[string]uint64{},
		profiles:  map[string]models.UserProfile{},
		verified:  map[string]bool{},
		banned:    map[string]bool{},
		campaigns: map[uint64]models.Campaign{},
		stats:     map[uint64]models.CampaignStats{},
		requests:  map[uint64]models.LoanRequest{},
		loans:     map[uint64]models.Loan{},
		proposals: map[uint64]models.Proposal{},
		votes:     map[voteKey]bool{},
	}
}

func (m *memState) stores() Stores {
	return Stores{
		Profiles:  memProfiles{m},
		Registry:  memRegistry{m},
		Campaigns: memCampaigns{m},
		Stats:     memStats{m},
		Loans:     memLoans{m},
		Proposals: memProposals{m},
		Members:   memMembers{m},
		Treasury:  memTreasury{m},
		Counters:  memCounters{m},
		Transfers: memTransfers{m},
		Audit:     memAudit{m},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T{}, items[offset:end]...)
}

type memCounters struct{ m *memState }

func (s memCounters) Next(_ context.Context, _ store.Getter, name string) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	v := s.m.counters[name]
	s.m.counters[name] = v + 1
	return v, nil
}

type memProfiles struct{ m *memState }

func (s memProfiles) Create(_ context.Context, _ store.Execer, accountID, username string, bio *string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.profiles[accountID] = models.UserProfile{
		AccountID:        accountID,
		Username:         username,
		Bio:              bio,
		Contributions:    pq.Int64Array{},
		CreatedCampaigns: pq.Int64Array{},
	}
	return nil
}

func (s memProfiles) Get(_ context.Context, accountID string) (models.UserProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.profiles[accountID]
	if !ok {
		return models.UserProfile{}, sql.ErrNoRows
	}
	return p, nil
}

func (s memProfiles) GetForUpdate(ctx context.Context, _ store.Getter, accountID string) (models.UserProfile, error) {
	return s.Get(ctx, accountID)
}

func (s memProfiles) Exists(_ context.Context, accountID string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	_, ok := s.m.profiles[accountID]
	return ok, nil
}

func (s memProfiles) update(accountID string, fn func(p *models.UserProfile)) int64 {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.profiles[accountID]
	if !ok {
		return 0
	}
	fn(&p)
	s.m.profiles[accountID] = p
	return 1
}

func (s memProfiles) UpdateBio(_ context.Context, _ store.Execer, accountID string, bio *string) (int64, error) {
	return s.update(accountID, func(p *models.UserProfile) { p.Bio = bio }), nil
}

func (s memProfiles) SetKYCVerified(_ context.Context, _ store.Execer, accountID string) (int64, error) {
	return s.update(accountID, func(p *models.UserProfile) { p.KYCVerified = true }), nil
}

func (s memProfiles) Delete(_ context.Context, _ store.Execer, accountID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.profiles[accountID]; !ok {
		return 0, nil
	}
	delete(s.m.profiles, accountID)
	return 1, nil
}

func (s memProfiles) AddContribution(_ context.Context, _ store.Execer, accountID string, campaignID uint64) error {
	s.update(accountID, func(p *models.UserProfile) {
		for _, existing := range p.Contributions {
			if uint64(existing) == campaignID {
				return
			}
		}
		p.Contributions = append(p.Contributions, int64(campaignID))
	})
	return nil
}

func (s memProfiles) AddCreatedCampaign(_ context.Context, _ store.Execer, accountID string, campaignID uint64) error {
	s.update(accountID, func(p *models.UserProfile) {
		p.CreatedCampaigns = append(p.CreatedCampaigns, int64(campaignID))
	})
	return nil
}

type memRegistry struct{ m *memState }

func (s memRegistry) AddVerified(_ context.Context, _ store.Execer, accountID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.verified[accountID] = true
	return nil
}

func (s memRegistry) RemoveBanned(_ context.Context, _ store.Execer, accountID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.banned, accountID)
	return nil
}

func (s memRegistry) IsBanned(_ context.Context, _ store.Getter, accountID string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.banned[accountID], nil
}

func (s memRegistry) Status(_ context.Context, accountID string) (store.RegistryStatus, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return store.RegistryStatus{Verified: s.m.verified[accountID], Banned: s.m.banned[accountID]}, nil
}

type memCampaigns struct{ m *memState }

func (s memCampaigns) Create(_ context.Context, _ store.Execer, c models.Campaign) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.campaigns[c.ID] = c
	return nil
}

func (s memCampaigns) contributionsLocked(id uint64) []models.Contribution {
	out := []models.Contribution{}
	for _, r := range s.m.contributions {
		if r.campaignID == id {
			out = append(out, r.Contribution)
		}
	}
	return out
}

func (s memCampaigns) Get(_ context.Context, id uint64) (models.Campaign, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.campaigns[id]
	if !ok {
		return models.Campaign{}, sql.ErrNoRows
	}
	c.Contributions = s.contributionsLocked(id)
	return c, nil
}

func (s memCampaigns) GetForUpdate(_ context.Context, _ store.Getter, id uint64) (models.Campaign, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.campaigns[id]
	if !ok {
		return models.Campaign{}, sql.ErrNoRows
	}
	return c, nil
}

func (s memCampaigns) List(_ context.Context, limit, offset int) ([]models.Campaign, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := make([]models.Campaign, 0, len(s.m.campaigns))
	for id, c := range s.m.campaigns {
		c.Contributions = s.contributionsLocked(id)
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (s memCampaigns) Contributions(_ context.Context, _ store.Selecter, id uint64) ([]models.Contribution, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.contributionsLocked(id), nil
}

func (s memCampaigns) CountContributions(_ context.Context, _ store.Getter, id uint64) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(len(s.contributionsLocked(id))), nil
}

func (s memCampaigns) InsertContribution(_ context.Context, _ store.Execer, id uint64, contributor string, amount uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.contributions = append(s.m.contributions, contributionRecord{
		campaignID:   id,
		Contribution: models.Contribution{Contributor: contributor, Amount: amount},
	})
	return nil
}

func (s memCampaigns) SetTotal(_ context.Context, _ store.Execer, id, total uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c := s.m.campaigns[id]
	c.TotalContributions = total
	s.m.campaigns[id] = c
	return nil
}

func (s memCampaigns) MarkClaimed(_ context.Context, _ store.Execer, id uint64) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.campaigns[id]
	if !ok || c.Claimed {
		return false, nil
	}
	c.Claimed = true
	s.m.campaigns[id] = c
	return true, nil
}

func (s memCampaigns) SetAmountRequired(_ context.Context, _ store.Execer, id, amount uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c := s.m.campaigns[id]
	c.AmountRequired = amount
	s.m.campaigns[id] = c
	return nil
}

func (s memCampaigns) Delete(_ context.Context, _ store.Execer, id uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.campaigns, id)
	delete(s.m.stats, id)
	kept := s.m.contributions[:0]
	for _, r := range s.m.contributions {
		if r.campaignID != id {
			kept = append(kept, r)
		}
	}
	s.m.contributions = kept
	return nil
}

func (s memCampaigns) ContributorTotal(_ context.Context, contributor string) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var total uint64
	for _, r := range s.m.contributions {
		if r.Contributor == contributor {
			total += r.Amount
		}
	}
	return total, nil
}

func (s memCampaigns) ContributorCampaignTotal(_ context.Context, id uint64, contributor string) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var total uint64
	for _, r := range s.m.contributions {
		if r.campaignID == id && r.Contributor == contributor {
			total += r.Amount
		}
	}
	return total, nil
}

type memStats struct{ m *memState }

func (s memStats) Create(_ context.Context, _ store.Execer, id uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.stats[id] = models.CampaignStats{CampaignID: id}
	return nil
}

func (s memStats) Get(_ context.Context, id uint64) (models.CampaignStats, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	st, ok := s.m.stats[id]
	if !ok {
		return models.CampaignStats{}, sql.ErrNoRows
	}
	return st, nil
}

func (s memStats) GetForUpdate(ctx context.Context, _ store.Getter, id uint64) (models.CampaignStats, error) {
	return s.Get(ctx, id)
}

func (s memStats) AddFunds(_ context.Context, _ store.Execer, id, amount uint64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if st, ok := s.m.stats[id]; ok {
		st.TotalFunds += amount
		s.m.stats[id] = st
	}
	return nil
}

func (s memStats) RecordWithdrawal(_ context.Context, _ store.Execer, id, amount uint64) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	st, ok := s.m.stats[id]
	if !ok {
		return 0, nil
	}
	st.TotalWithdrawn += amount
	st.NumberOfWithdrawals++
	s.m.stats[id] = st
	return 1, nil
}

func (s memStats) InsertLog(_ context.Context, _ store.Execer, log models.WithdrawalLog) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.logs = append(s.m.logs, log)
	return nil
}

func (s memStats) ListLogs(_ context.Context, id uint64) ([]models.WithdrawalLog, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.WithdrawalLog{}
	for _, l := range s.m.logs {
		if l.CampaignID == id {
			out = append(out, l)
		}
	}
	return out, nil
}

type memLoans struct{ m *memState }

func (s memLoans) CreateRequest(_ context.Context, _ store.Execer, r models.LoanRequest) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.requests[r.ID] = r
	return nil
}

func (s memLoans) GetRequest(_ context.Context, id uint64) (models.LoanRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.requests[id]
	if !ok {
		return models.LoanRequest{}, sql.ErrNoRows
	}
	return r, nil
}

func (s memLoans) GetRequestForUpdate(ctx context.Context, _ store.Getter, id uint64) (models.LoanRequest, error) {
	return s.GetRequest(ctx, id)
}

func (s memLoans) ListRequests(_ context.Context, limit, offset int) ([]models.LoanRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := make([]models.LoanRequest, 0, len(s.m.requests))
	for _, r := range s.m.requests {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (s memLoans) MarkFulfilled(_ context.Context, _ store.Execer, id uint64) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.requests[id]
	if !ok || r.Fulfilled {
		return false, nil
	}
	r.Fulfilled = true
	s.m.requests[id] = r
	return true, nil
}

func (s memLoans) CreateLoan(_ context.Context, _ store.Execer, l models.Loan) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.loans[l.ID] = l
	return nil
}

func (s memLoans) GetLoan(_ context.Context, id uint64) (models.Loan, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	l, ok := s.m.loans[id]
	if !ok {
		return models.Loan{}, sql.ErrNoRows
	}
	return l, nil
}

func (s memLoans) GetLoanForUpdate(ctx context.Context, _ store.Getter, id uint64) (models.Loan, error) {
	return s.GetLoan(ctx, id)
}

func (s memLoans) ListLoans(_ context.Context, limit, offset int) ([]models.Loan, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := make([]models.Loan, 0, len(s.m.loans))
	for _, l := range s.m.loans {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (s memLoans) MarkRepaid(_ context.Context, _ store.Execer, id uint64, _ time.Time) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	l, ok := s.m.loans[id]
	if !ok || l.Repaid {
		return false, nil
	}
	l.Repaid = true
	s.m.loans[id] = l
	return true, nil
}

type memProposals struct{ m *memState }

func (s memProposals) Create(_ context.Context, _ store.Execer, p models.Proposal) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.proposals[p.ID] = p
	return nil
}

func (s memProposals) Get(_ context.Context, id uint64) (models.Proposal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.proposals[id]
	if !ok {
		return models.Proposal{}, sql.ErrNoRows
	}
	return p, nil
}

func (s memProposals) GetForUpdate(ctx context.Context, _ store.Getter, id uint64) (models.Proposal, error) {
	return s.Get(ctx, id)
}

func (s memProposals) List(_ context.Context, limit, offset int) ([]models.Proposal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := make([]models.Proposal, 0, len(s.m.proposals))
	for _, p := range s.m.proposals {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (s memProposals) RecordVoter(_ context.Context, _ store.Execer, id uint64, voter string, _ bool) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	key := voteKey{proposal: id, voter: voter}
	if s.m.votes[key] {
		return false, nil
	}
	s.m.votes[key] = true
	return true, nil
}

func (s memProposals) AddVote(_ context.Context, _ store.Execer, id uint64, support bool) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p := s.m.proposals[id]
	if support {
		p.VotesFor++
	} else {
		p.VotesAgainst++
	}
	s.m.proposals[id] = p
	return nil
}

func (s memProposals) MarkExecuted(_ context.Context, _ store.Execer, id uint64, _ time.Time) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.proposals[id]
	if !ok || p.Executed {
		return false, nil
	}
	p.Executed = true
	s.m.proposals[id] = p
	return true, nil
}

type memMembers struct{ m *memState }

func (s memMembers) Append(_ context.Context, _ store.Execer, accountID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.members = append(s.m.members, accountID)
	return nil
}

func (s memMembers) IsMember(_ context.Context, _ store.Getter, accountID string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, m := range s.m.members {
		if m == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (s memMembers) Contains(ctx context.Context, accountID string) (bool, error) {
	return s.IsMember(ctx, nil, accountID)
}

func (s memMembers) Count(_ context.Context, _ store.Getter) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return uint64(len(s.m.members)), nil
}

func (s memMembers) List(_ context.Context) ([]string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return append([]string{}, s.m.members...), nil
}

type memTreasury struct{ m *memState }

func (s memTreasury) Add(_ context.Context, _ store.Getter, amount uint64) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.treasury += amount
	return s.m.treasury, nil
}

func (s memTreasury) BalanceForUpdate(ctx context.Context, _ store.Getter) (uint64, error) {
	return s.Balance(ctx)
}

func (s memTreasury) Balance(_ context.Context) (uint64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.treasury, nil
}

type memTransfers struct{ m *memState }

func (s memTransfers) Insert(_ context.Context, _ store.Execer, t models.Transfer) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.transfers = append(s.m.transfers, t)
	return nil
}

func (s memTransfers) ListByRecipient(_ context.Context, recipient string, limit, offset int) ([]models.Transfer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Transfer{}
	for i := len(s.m.transfers) - 1; i >= 0; i-- {
		if s.m.transfers[i].Recipient == recipient {
			out = append(out, s.m.transfers[i])
		}
	}
	return page(out, limit, offset), nil
}

type memAudit struct{ m *memState }

func (s memAudit) Log(_ context.Context, _ store.Execer, actorID, action, entityType, entityID, data string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	actor := actorID
	s.m.audit = append(s.m.audit, store.AuditEntry{
		Actor:      &actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Data:       data,
	})
	return nil
}

func (s memAudit) List(_ context.Context, limit, offset int) ([]store.AuditEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return page(s.m.audit, limit, offset), nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	transfers []models.Transfer
}

func (n *recordingNotifier) NotifyTransfer(t models.Transfer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transfers = append(n.transfers, t)
}

type mapCache struct {
	profiles    map[string]models.UserProfile
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{profiles: map[string]models.UserProfile{}}
}

func (c *mapCache) GetProfile(_ context.Context, accountID string) (models.UserProfile, bool) {
	p, ok := c.profiles[accountID]
	return p, ok
}

func (c *mapCache) SetProfile(_ context.Context, p models.UserProfile) {
	c.profiles[p.AccountID] = p
}

func (c *mapCache) Invalidate(_ context.Context, accountIDs ...string) {
	for _, id := range accountIDs {
		delete(c.profiles, id)
		c.invalidated = append(c.invalidated, id)
	}
}
