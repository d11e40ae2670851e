package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"fundchain/internal/auth"
	"fundchain/internal/db"
	"fundchain/internal/validator"

	"github.com/jmoiron/sqlx"
)

type credentialsRequest struct {
	AccountID string `json:"account_id"`
	Secret    string `json:"secret"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateAccountID(req.AccountID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateSecret(req.Secret); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AccountID == h.cfg.ContractAccount {
		respondError(w, http.StatusConflict, "account id is reserved")
		return
	}
	secretHash, err := auth.HashSecret(req.Secret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure secret")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.accounts.Create(r.Context(), tx, req.AccountID, secretHash)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "account already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, req.AccountID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"account_id": req.AccountID,
		"token":      token,
	})
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	hash, err := h.accounts.GetSecretHash(r.Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckSecret(hash, req.Secret) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, req.AccountID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
