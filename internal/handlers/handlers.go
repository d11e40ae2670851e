package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"fundchain/internal/middleware"
	"fundchain/internal/models"
	"fundchain/internal/money"
	"fundchain/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

var (
	errInvalidID     = errors.New("invalid id")
	errInvalidPaging = errors.New("invalid from or limit")
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondLedgerError maps a ledger failure to its HTTP status by kind.
func respondLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, services.ErrPreconditionFailed):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func queryUint(r *http.Request, key string) (uint64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func pageParams(r *http.Request) (uint64, uint64, error) {
	from, err := queryUint(r, "from")
	if err != nil {
		return 0, 0, errInvalidPaging
	}
	limit, err := queryUint(r, "limit")
	if err != nil {
		return 0, 0, errInvalidPaging
	}
	return from, limit, nil
}

// call builds the host context of an operation: the authenticated caller,
// the attached deposit and the server clock.
func (h *Handler) call(r *http.Request, deposit string) (services.Call, error) {
	caller, _ := middleware.CallerFromContext(r.Context())
	units, err := money.ParseUnits(deposit)
	if err != nil {
		return services.Call{}, err
	}
	return services.Call{Caller: caller, Deposit: units, Now: h.now().UTC()}, nil
}

type depositRequest struct {
	Deposit string `json:"deposit"`
}

func transferView(t models.Transfer) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"recipient":   t.Recipient,
		"amount":      money.FormatUnits(t.Amount),
		"reason":      t.Reason,
		"entity_type": t.EntityType,
		"entity_id":   t.EntityID,
		"status":      t.Status,
		"created_at":  t.CreatedAt,
	}
}

func transferViews(transfers []models.Transfer) []map[string]any {
	out := make([]map[string]any, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, transferView(t))
	}
	return out
}

