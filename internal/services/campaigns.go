package services

import (
	"context"
	"time"

	"fundchain/internal/config"
	"fundchain/internal/models"
	"fundchain/internal/money"
	"fundchain/internal/store"

	"github.com/lib/pq"
)

type campaigns struct {
	store    CampaignStore
	stats    StatsStore
	counters CounterStore
	profiles ProfileStore
	opts     Options
}

type CampaignInput struct {
	Title               string
	Description         string
	Images              []string
	CampaignCode        string
	AmountRequired      uint64
	CrowdfundingEndTime time.Time
}

func (c *campaigns) lookup(ctx context.Context, tx store.DB, id uint64) (models.Campaign, error) {
	campaign, err := c.store.GetForUpdate(ctx, tx, id)
	if err != nil {
		return models.Campaign{}, notFound(err, ErrCampaignNotFound)
	}
	return campaign, nil
}

func (c *campaigns) requireOwner(campaign models.Campaign, caller string) error {
	if campaign.Creator != caller {
		return ErrNotCampaignOwner
	}
	return nil
}

// refundPlan decides who gets what when a campaign is unwound. Individual
// mode pays each contributor the sum of their own contributions, in the
// order they first contributed. Pooled mode repeats the legacy behaviour
// of paying the whole pool once per contribution record.
func (c *campaigns) refundPlan(contributions []models.Contribution, total uint64) []models.Contribution {
	if c.opts.RefundMode == config.RefundPooled {
		plan := make([]models.Contribution, 0, len(contributions))
		for _, contribution := range contributions {
			plan = append(plan, models.Contribution{Contributor: contribution.Contributor, Amount: total})
		}
		return plan
	}
	index := map[string]int{}
	plan := []models.Contribution{}
	for _, contribution := range contributions {
		i, ok := index[contribution.Contributor]
		if !ok {
			index[contribution.Contributor] = len(plan)
			plan = append(plan, contribution)
			continue
		}
		plan[i].Amount += contribution.Amount
	}
	return plan
}

func (c *campaigns) unwind(ctx context.Context, tx store.DB, fx *effects, campaign models.Campaign, reason string) error {
	contributions, err := c.store.Contributions(ctx, tx, campaign.ID)
	if err != nil {
		return err
	}
	for _, refund := range c.refundPlan(contributions, campaign.TotalContributions) {
		fx.pay(refund.Contributor, refund.Amount, reason)
	}
	fx.set("refunds", len(fx.transfers))
	return c.store.Delete(ctx, tx, campaign.ID)
}

func (c *campaigns) recordWithdrawal(ctx context.Context, tx store.DB, id uint64, recipient string, amount uint64, at time.Time) error {
	if _, err := c.stats.RecordWithdrawal(ctx, tx, id, amount); err != nil {
		return err
	}
	return c.stats.InsertLog(ctx, tx, models.WithdrawalLog{
		CampaignID:  id,
		Recipient:   recipient,
		Amount:      amount,
		WithdrawnAt: at,
	})
}

// CreateCampaign opens a campaign owned by the caller. Goals above the KYC
// threshold need a KYC-verified profile.
func (l *Ledger) CreateCampaign(ctx context.Context, call Call, in CampaignInput) (uint64, error) {
	c := l.campaigns
	var id uint64
	_, err := l.execute(ctx, call, "create_campaign", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		profile, err := l.directory.lookup(ctx, tx, call.Caller)
		if err != nil {
			return err
		}
		if in.AmountRequired > c.opts.KYCThreshold && !profile.KYCVerified {
			return ErrKYCRequired
		}
		if in.AmountRequired > money.MaxUnits {
			return ErrAmountOverflow
		}
		id, err = c.counters.Next(ctx, tx, store.CounterCampaign)
		if err != nil {
			return err
		}
		fx.target("campaign", id)
		fx.touch(call.Caller)
		fx.set("amount_required", in.AmountRequired)
		images := pq.StringArray(in.Images)
		if images == nil {
			images = pq.StringArray{}
		}
		if err := c.store.Create(ctx, tx, models.Campaign{
			ID:                  id,
			Creator:             call.Caller,
			Title:               in.Title,
			Description:         in.Description,
			Images:              images,
			CampaignCode:        in.CampaignCode,
			AmountRequired:      in.AmountRequired,
			CrowdfundingEndTime: in.CrowdfundingEndTime,
		}); err != nil {
			return err
		}
		if err := c.stats.Create(ctx, tx, id); err != nil {
			return err
		}
		return c.profiles.AddCreatedCampaign(ctx, tx, call.Caller, id)
	})
	return id, err
}

// Contribute pledges the attached deposit to an open campaign.
func (l *Ledger) Contribute(ctx context.Context, call Call, id uint64) error {
	c := l.campaigns
	_, err := l.execute(ctx, call, "contribute", func(tx store.DB, fx *effects) error {
		fx.target("campaign", id)
		campaign, err := c.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := l.directory.lookup(ctx, tx, call.Caller); err != nil {
			return err
		}
		if !call.Now.Before(campaign.CrowdfundingEndTime) {
			return ErrCampaignEnded
		}
		total, err := money.Add(campaign.TotalContributions, call.Deposit)
		if err != nil {
			return ErrAmountOverflow
		}
		fx.touch(call.Caller)
		fx.set("amount", call.Deposit)
		if err := c.store.InsertContribution(ctx, tx, id, call.Caller, call.Deposit); err != nil {
			return err
		}
		if err := c.store.SetTotal(ctx, tx, id, total); err != nil {
			return err
		}
		if err := c.stats.AddFunds(ctx, tx, id, call.Deposit); err != nil {
			return err
		}
		return c.profiles.AddContribution(ctx, tx, call.Caller, id)
	})
	return err
}

// Withdraw pays the whole pool to the creator once the campaign ended with
// its goal met. It can succeed only once per campaign.
func (l *Ledger) Withdraw(ctx context.Context, call Call, id uint64) (models.Transfer, error) {
	c := l.campaigns
	fx, err := l.execute(ctx, call, "withdraw", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.target("campaign", id)
		campaign, err := c.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if !call.Now.After(campaign.CrowdfundingEndTime) {
			return ErrCampaignNotEnded
		}
		if campaign.Claimed {
			return ErrAlreadyClaimed
		}
		if !campaign.GoalReached() {
			return ErrGoalNotMet
		}
		claimed, err := c.store.MarkClaimed(ctx, tx, id)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrAlreadyClaimed
		}
		if err := c.recordWithdrawal(ctx, tx, id, campaign.Creator, campaign.TotalContributions, call.Now); err != nil {
			return err
		}
		fx.set("amount", campaign.TotalContributions)
		fx.pay(campaign.Creator, campaign.TotalContributions, ReasonCampaignWithdraw)
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	if len(fx.transfers) == 0 {
		return models.Transfer{}, nil
	}
	return fx.transfers[0], nil
}

// WithdrawFunds lets the creator drain the current pool to any recipient
// while the goal is met. It resets the pool instead of claiming the
// campaign, so it may run again after new contributions.
func (l *Ledger) WithdrawFunds(ctx context.Context, call Call, id uint64, recipient string) (models.Transfer, error) {
	c := l.campaigns
	fx, err := l.execute(ctx, call, "withdraw_funds", func(tx store.DB, fx *effects) error {
		fx.target("campaign", id)
		campaign, err := c.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(campaign, call.Caller); err != nil {
			return err
		}
		if campaign.Claimed {
			return ErrAlreadyClaimed
		}
		if !campaign.GoalReached() {
			return ErrGoalNotMet
		}
		if _, err := c.stats.GetForUpdate(ctx, tx, id); err != nil {
			return notFound(err, ErrStatsNotFound)
		}
		amount := campaign.TotalContributions
		if err := c.store.SetTotal(ctx, tx, id, 0); err != nil {
			return err
		}
		if err := c.recordWithdrawal(ctx, tx, id, recipient, amount, call.Now); err != nil {
			return err
		}
		fx.set("amount", amount)
		fx.set("recipient", recipient)
		fx.pay(recipient, amount, ReasonCampaignWithdrawFunds)
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}
	if len(fx.transfers) == 0 {
		return models.Transfer{}, nil
	}
	return fx.transfers[0], nil
}

// CancelCampaign refunds contributors and removes the campaign. Only the
// creator may cancel, and only before the deadline.
func (l *Ledger) CancelCampaign(ctx context.Context, call Call, id uint64) ([]models.Transfer, error) {
	c := l.campaigns
	fx, err := l.execute(ctx, call, "cancel_campaign", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.target("campaign", id)
		campaign, err := c.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(campaign, call.Caller); err != nil {
			return err
		}
		if !call.Now.Before(campaign.CrowdfundingEndTime) {
			return ErrCampaignEnded
		}
		return c.unwind(ctx, tx, fx, campaign, ReasonCampaignCancelRefund)
	})
	if err != nil {
		return nil, err
	}
	return fx.transfers, nil
}

// RefundContributors unwinds a campaign that ended below its goal.
func (l *Ledger) RefundContributors(ctx context.Context, call Call, id uint64) ([]models.Transfer, error) {
	c := l.campaigns
	fx, err := l.execute(ctx, call, "refund_contributors", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.target("campaign", id)
		campaign, err := c.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if !call.Now.After(campaign.CrowdfundingEndTime) {
			return ErrCampaignNotEnded
		}
		if campaign.GoalReached() {
			return ErrGoalReached
		}
		return c.unwind(ctx, tx, fx, campaign, ReasonCampaignFailedRefund)
	})
	if err != nil {
		return nil, err
	}
	return fx.transfers, nil
}

// ModifyFundingGoal changes the goal while nobody has contributed yet.
func (l *Ledger) ModifyFundingGoal(ctx context.Context, call Call, id, goal uint64) error {
	c := l.campaigns
	_, err := l.execute(ctx, call, "modify_funding_goal", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.target("campaign", id)
		campaign, err := c.lookup(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(campaign, call.Caller); err != nil {
			return err
		}
		count, err := c.store.CountContributions(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrHasContributions
		}
		if goal > money.MaxUnits {
			return ErrAmountOverflow
		}
		fx.set("amount_required", goal)
		return c.store.SetAmountRequired(ctx, tx, id, goal)
	})
	return err
}

func (l *Ledger) Campaign(ctx context.Context, id uint64) (models.Campaign, error) {
	campaign, err := l.campaigns.store.Get(ctx, id)
	if err != nil {
		return models.Campaign{}, notFound(err, ErrCampaignNotFound)
	}
	return campaign, nil
}

// Campaigns pages through campaigns in creation order, skipping from and
// returning at most limit entries.
func (l *Ledger) Campaigns(ctx context.Context, from, limit uint64) ([]models.Campaign, error) {
	size, offset := Page(from, limit)
	return l.campaigns.store.List(ctx, size, offset)
}

func (l *Ledger) CampaignStatus(ctx context.Context, id uint64, now time.Time) (string, error) {
	campaign, err := l.Campaign(ctx, id)
	if err != nil {
		return "", err
	}
	return campaign.Status(now), nil
}

func (l *Ledger) CampaignContributions(ctx context.Context, id uint64) ([]models.Contribution, error) {
	campaign, err := l.Campaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Contributions == nil {
		return []models.Contribution{}, nil
	}
	return campaign.Contributions, nil
}

func (l *Ledger) UserTotalContributions(ctx context.Context, accountID string) (uint64, error) {
	return l.campaigns.store.ContributorTotal(ctx, accountID)
}

func (l *Ledger) UserCampaignContribution(ctx context.Context, id uint64, accountID string) (uint64, error) {
	if _, err := l.Campaign(ctx, id); err != nil {
		return 0, err
	}
	return l.campaigns.store.ContributorCampaignTotal(ctx, id, accountID)
}

func (l *Ledger) CampaignStats(ctx context.Context, id uint64) (models.CampaignStats, error) {
	stats, err := l.campaigns.stats.Get(ctx, id)
	if err != nil {
		return models.CampaignStats{}, notFound(err, ErrStatsNotFound)
	}
	return stats, nil
}

func (l *Ledger) WithdrawalLogs(ctx context.Context, id uint64) ([]models.WithdrawalLog, error) {
	if _, err := l.Campaign(ctx, id); err != nil {
		return nil, err
	}
	return l.campaigns.stats.ListLogs(ctx, id)
}
