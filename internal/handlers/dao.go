package handlers

import (
	"net/http"
	"strings"

	"fundchain/internal/money"
	"fundchain/internal/validator"

	"github.com/go-chi/chi/v5"
)

type memberRequest struct {
	AccountID string `json:"account_id"`
}

func (h *Handler) AddTrustedMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateAccountID(req.AccountID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.AddTrustedMember(r.Context(), call, req.AccountID); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTrustedMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.ledger.TrustedMembers(r.Context())
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (h *Handler) IsTrustedMember(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account")
	ok, err := h.ledger.IsTrustedMember(r.Context(), accountID)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"account_id": accountID, "trusted": ok})
}

type proposalRequest struct {
	Description string `json:"description"`
}

func (h *Handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondError(w, http.StatusBadRequest, "description is required")
		return
	}
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.ledger.CreateProposal(r.Context(), call, req.Description)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	from, limit, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	proposals, err := h.ledger.Proposals(r.Context(), from, limit)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, proposals)
}

func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.ledger.Proposal(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type voteRequest struct {
	Support *bool `json:"support"`
}

func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return "" })
	if !ok {
		return
	}
	if req.Support == nil {
		respondError(w, http.StatusBadRequest, "support is required")
		return
	}
	if err := h.ledger.Vote(r.Context(), call, id, *req.Support); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExecuteProposal(w http.ResponseWriter, r *http.Request) {
	var req struct{}
	id, call, ok := h.entityCall(w, r, &req, func() string { return "" })
	if !ok {
		return
	}
	if err := h.ledger.ExecuteProposal(r.Context(), call, id); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ContributeToTreasury(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	call, err := h.call(r, req.Deposit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	balance, err := h.ledger.ContributeToTreasury(r.Context(), call)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": money.FormatUnits(balance)})
}

func (h *Handler) Treasury(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.Treasury(r.Context())
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": money.FormatUnits(balance)})
}
