package handlers

import (
	"net/http"
	"time"

	"fundchain/internal/models"
	"fundchain/internal/money"
	"fundchain/internal/services"
	"fundchain/internal/validator"

	"github.com/go-chi/chi/v5"
)

type createCampaignRequest struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Images              []string  `json:"images"`
	CampaignCode        string    `json:"campaign_code"`
	AmountRequired      string    `json:"amount_required"`
	CrowdfundingEndTime time.Time `json:"crowdfunding_end_time"`
}

func campaignView(c models.Campaign, now time.Time) map[string]any {
	contributions := c.Contributions
	if contributions == nil {
		contributions = []models.Contribution{}
	}
	return map[string]any{
		"id":                    c.ID,
		"creator":               c.Creator,
		"title":                 c.Title,
		"description":           c.Description,
		"images":                c.Images,
		"campaign_code":         c.CampaignCode,
		"amount_required":       money.FormatUnits(c.AmountRequired),
		"total_contributions":   money.FormatUnits(c.TotalContributions),
		"crowdfunding_end_time": c.CrowdfundingEndTime,
		"claimed":               c.Claimed,
		"status":                c.Status(now),
		"contributions":         contributions,
	}
}

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateCampaign(req.Title, req.Description, req.CampaignCode, req.Images); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	goal, err := money.ParseUnits(req.AmountRequired)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount_required")
		return
	}
	if req.CrowdfundingEndTime.IsZero() {
		respondError(w, http.StatusBadRequest, "crowdfunding_end_time is required")
		return
	}
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.ledger.CreateCampaign(r.Context(), call, services.CampaignInput{
		Title:               req.Title,
		Description:         req.Description,
		Images:              req.Images,
		CampaignCode:        req.CampaignCode,
		AmountRequired:      goal,
		CrowdfundingEndTime: req.CrowdfundingEndTime.UTC(),
	})
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	from, limit, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	campaigns, err := h.ledger.Campaigns(r.Context(), from, limit)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	now := h.now().UTC()
	out := make([]map[string]any, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, campaignView(c, now))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.ledger.Campaign(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, campaignView(c, h.now().UTC()))
}

func (h *Handler) CampaignStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := h.ledger.CampaignStatus(r.Context(), id, h.now().UTC())
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) CampaignContributions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	contributions, err := h.ledger.CampaignContributions(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contributions)
}

func (h *Handler) UserCampaignContribution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	account := chi.URLParam(r, "account")
	total, err := h.ledger.UserCampaignContribution(r.Context(), id, account)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"campaign_id": id, "account_id": account, "total": money.FormatUnits(total)})
}

func (h *Handler) UserTotalContributions(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	total, err := h.ledger.UserTotalContributions(r.Context(), account)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"account_id": account, "total": money.FormatUnits(total)})
}

func (h *Handler) CampaignStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.ledger.CampaignStats(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) WithdrawalLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := h.ledger.WithdrawalLogs(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// entityCall reads the entity id from the path and the optional
// deposit from the body.
func (h *Handler) entityCall(w http.ResponseWriter, r *http.Request, body any, deposit func() string) (uint64, services.Call, bool) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return 0, services.Call{}, false
	}
	if err := decodeJSON(r, body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return 0, services.Call{}, false
	}
	call, err := h.call(r, deposit())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return 0, services.Call{}, false
	}
	return id, call, true
}

func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	if err := h.ledger.Contribute(r.Context(), call, id); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	transfer, err := h.ledger.Withdraw(r.Context(), call, id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transferView(transfer))
}

type withdrawFundsRequest struct {
	Recipient string `json:"recipient"`
	Deposit   string `json:"deposit"`
}

func (h *Handler) WithdrawFunds(w http.ResponseWriter, r *http.Request) {
	var req withdrawFundsRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	if err := validator.ValidateAccountID(req.Recipient); err != nil {
		respondError(w, http.StatusBadRequest, "invalid recipient")
		return
	}
	transfer, err := h.ledger.WithdrawFunds(r.Context(), call, id, req.Recipient)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transferView(transfer))
}

func (h *Handler) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	refunds, err := h.ledger.CancelCampaign(r.Context(), call, id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"refunds": transferViews(refunds)})
}

func (h *Handler) RefundContributors(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	refunds, err := h.ledger.RefundContributors(r.Context(), call, id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"refunds": transferViews(refunds)})
}

type goalRequest struct {
	AmountRequired string `json:"amount_required"`
}

func (h *Handler) ModifyFundingGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return "" })
	if !ok {
		return
	}
	goal, err := money.ParseUnits(req.AmountRequired)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount_required")
		return
	}
	if err := h.ledger.ModifyFundingGoal(r.Context(), call, id, goal); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
