package handlers

import (
	"net/http"
	"time"

	"fundchain/internal/config"
	"fundchain/internal/db"
	"fundchain/internal/middleware"
	"fundchain/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner db.TxRunner
	cfg      config.Config
	accounts AccountStore
	ledger   Ledger
	hub      *websocket.Hub
	now      func() time.Time
}

func New(txRunner db.TxRunner, cfg config.Config, accounts AccountStore, ledger Ledger, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner: txRunner,
		cfg:      cfg,
		accounts: accounts,
		ledger:   ledger,
		hub:      hub,
		now:      time.Now,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/token", h.Token)
	})

	authed := middleware.Auth(h.cfg.JWTSecret)
	privileged := middleware.RequireCaller(h.cfg.ContractAccount)

	router.Group(func(r chi.Router) {
		r.Use(authed)

		r.Post("/registry/verify/{account}", h.VerifyUser)
		r.Post("/registry/unban/{account}", h.UnbanUser)
		r.Get("/registry/{account}", h.RegistryStatus)

		r.Post("/profiles", h.CreateProfile)
		r.Put("/profiles/me", h.UpdateProfile)
		r.Get("/profiles/me/exists", h.SelfExists)
		r.Get("/profiles/{account}", h.GetProfile)
		r.Get("/profiles/{account}/exists", h.ProfileExists)
		r.With(privileged).Post("/profiles/{account}/kyc", h.VerifyKYC)
		r.With(privileged).Delete("/profiles/{account}", h.RemoveProfile)

		r.Post("/campaigns", h.CreateCampaign)
		r.Get("/campaigns", h.ListCampaigns)
		r.Get("/campaigns/{id}", h.GetCampaign)
		r.Get("/campaigns/{id}/status", h.CampaignStatus)
		r.Get("/campaigns/{id}/contributions", h.CampaignContributions)
		r.Get("/campaigns/{id}/contributions/{account}", h.UserCampaignContribution)
		r.Get("/campaigns/{id}/stats", h.CampaignStats)
		r.Get("/campaigns/{id}/withdrawals", h.WithdrawalLogs)
		r.Post("/campaigns/{id}/contribute", h.Contribute)
		r.Post("/campaigns/{id}/withdraw", h.Withdraw)
		r.Post("/campaigns/{id}/withdraw-funds", h.WithdrawFunds)
		r.Post("/campaigns/{id}/cancel", h.CancelCampaign)
		r.Post("/campaigns/{id}/refund", h.RefundContributors)
		r.Put("/campaigns/{id}/goal", h.ModifyFundingGoal)
		r.Get("/accounts/{account}/contributions/total", h.UserTotalContributions)

		r.Post("/loan-requests", h.CreateLoanRequest)
		r.Get("/loan-requests", h.ListLoanRequests)
		r.Get("/loan-requests/{id}", h.GetLoanRequest)
		r.Post("/loan-requests/{id}/accept", h.AcceptLoanRequest)
		r.Get("/loans", h.ListLoans)
		r.Get("/loans/{id}", h.GetLoan)
		r.Post("/loans/{id}/repay", h.RepayLoan)

		r.With(privileged).Post("/dao/members", h.AddTrustedMember)
		r.Get("/dao/members", h.ListTrustedMembers)
		r.Get("/dao/members/{account}", h.IsTrustedMember)
		r.Post("/dao/proposals", h.CreateProposal)
		r.Get("/dao/proposals", h.ListProposals)
		r.Get("/dao/proposals/{id}", h.GetProposal)
		r.Post("/dao/proposals/{id}/vote", h.Vote)
		r.Post("/dao/proposals/{id}/execute", h.ExecuteProposal)
		r.Post("/dao/treasury", h.ContributeToTreasury)
		r.Get("/dao/treasury", h.Treasury)

		r.Get("/transfers", h.ListTransfers)
		r.With(privileged).Get("/audit", h.ListAuditLog)
	})
	router.Get("/ws/transfers", h.WSTransfers)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
