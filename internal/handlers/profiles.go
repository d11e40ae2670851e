package handlers

import (
	"net/http"

	"fundchain/internal/middleware"
	"fundchain/internal/validator"

	"github.com/go-chi/chi/v5"
)

type profileRequest struct {
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateBio(req.Bio); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.CreateProfile(r.Context(), call, req.Username, req.Bio); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	profile, err := h.ledger.Profile(r.Context(), call.Caller)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateBio(req.Bio); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.UpdateProfile(r.Context(), call, req.Bio); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ledger.Profile(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *Handler) respondExists(w http.ResponseWriter, r *http.Request, accountID string) {
	exists, err := h.ledger.ProfileExists(r.Context(), accountID)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"account_id": accountID, "exists": exists})
}

func (h *Handler) SelfExists(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())
	h.respondExists(w, r, caller)
}

func (h *Handler) ProfileExists(w http.ResponseWriter, r *http.Request) {
	h.respondExists(w, r, chi.URLParam(r, "account"))
}

func (h *Handler) VerifyKYC(w http.ResponseWriter, r *http.Request) {
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.VerifyKYC(r.Context(), call, chi.URLParam(r, "account")); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveProfile(w http.ResponseWriter, r *http.Request) {
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.RemoveProfile(r.Context(), call, chi.URLParam(r, "account")); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
