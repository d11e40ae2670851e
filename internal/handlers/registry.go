package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.VerifyUser(r.Context(), call, chi.URLParam(r, "account")); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	call, err := h.call(r, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.UnbanUser(r.Context(), call, chi.URLParam(r, "account")); err != nil {
		respondLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RegistryStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.ledger.RegistryStatus(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
