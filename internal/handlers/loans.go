package handlers

import (
	"math"
	"net/http"

	"fundchain/internal/money"
	"fundchain/internal/services"
)

type loanRequestRequest struct {
	Amount       string `json:"amount"`
	InterestRate uint   `json:"interest_rate"`
	Duration     uint64 `json:"duration"`
	Deposit      string `json:"deposit"`
}

func (h *Handler) CreateLoanRequest(w http.ResponseWriter, r *http.Request) {
	var req loanRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := money.ParseUnits(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if req.InterestRate > math.MaxUint8 {
		respondError(w, http.StatusBadRequest, "interest_rate must be between 0 and 255")
		return
	}
	call, err := h.call(r, req.Deposit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.ledger.CreateLoanRequest(r.Context(), call, services.LoanRequestInput{
		Amount:       amount,
		InterestRate: uint8(req.InterestRate),
		Duration:     req.Duration,
	})
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) ListLoanRequests(w http.ResponseWriter, r *http.Request) {
	from, limit, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	requests, err := h.ledger.LoanRequests(r.Context(), from, limit)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

func (h *Handler) GetLoanRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := h.ledger.LoanRequest(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *Handler) AcceptLoanRequest(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	loanID, err := h.ledger.AcceptLoanRequest(r.Context(), call, id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]uint64{"loan_id": loanID})
}

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	from, limit, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	loans, err := h.ledger.Loans(r.Context(), from, limit)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loans)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	loan, err := h.ledger.Loan(r.Context(), id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	due, _ := money.RepaymentDue(loan.Amount, loan.InterestRate)
	respondJSON(w, http.StatusOK, map[string]any{
		"loan":          loan,
		"repayment_due": money.FormatUnits(due),
		"due_at":        loan.DueAt(),
	})
}

func (h *Handler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	id, call, ok := h.entityCall(w, r, &req, func() string { return req.Deposit })
	if !ok {
		return
	}
	transfer, err := h.ledger.RepayLoan(r.Context(), call, id)
	if err != nil {
		respondLedgerError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transferView(transfer))
}
