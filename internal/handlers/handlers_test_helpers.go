package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"fundchain/internal/auth"
	"fundchain/internal/config"
	"fundchain/internal/db"
	"fundchain/internal/models"
	"fundchain/internal/services"
	"fundchain/internal/store"
	"fundchain/internal/websocket"

	"github.com/jmoiron/sqlx"
)

const (
	testSecret   = "secret"
	testContract = "fundchain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubAccountStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, secretHash string) error
	getSecretHashFn func(ctx context.Context, id string) (string, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, id, secretHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, secretHash)
}

func (s stubAccountStore) GetSecretHash(ctx context.Context, id string) (string, error) {
	if s.getSecretHashFn == nil {
		return "", nil
	}
	return s.getSecretHashFn(ctx, id)
}

// stubLedger overrides the operations a test exercises. Any other call
// hits the nil embedded interface and panics.
type stubLedger struct {
	Ledger
	createProfileFn  func(ctx context.Context, call services.Call, username string, bio *string) error
	profileFn        func(ctx context.Context, accountID string) (models.UserProfile, error)
	profileExistsFn  func(ctx context.Context, accountID string) (bool, error)
	verifyKYCFn      func(ctx context.Context, call services.Call, accountID string) error
	createCampaignFn func(ctx context.Context, call services.Call, in services.CampaignInput) (uint64, error)
	campaignFn       func(ctx context.Context, id uint64) (models.Campaign, error)
	contributeFn     func(ctx context.Context, call services.Call, id uint64) error
	withdrawFn       func(ctx context.Context, call services.Call, id uint64) (models.Transfer, error)
	cancelFn         func(ctx context.Context, call services.Call, id uint64) ([]models.Transfer, error)
	createRequestFn  func(ctx context.Context, call services.Call, in services.LoanRequestInput) (uint64, error)
	repayFn          func(ctx context.Context, call services.Call, id uint64) (models.Transfer, error)
	voteFn           func(ctx context.Context, call services.Call, id uint64, support bool) error
	addMemberFn      func(ctx context.Context, call services.Call, member string) error
	isMemberFn       func(ctx context.Context, accountID string) (bool, error)
	treasuryFn       func(ctx context.Context, call services.Call) (uint64, error)
	transfersFn      func(ctx context.Context, recipient string, from, limit uint64) ([]models.Transfer, error)
}

func (s stubLedger) CreateProfile(ctx context.Context, call services.Call, username string, bio *string) error {
	return s.createProfileFn(ctx, call, username, bio)
}

func (s stubLedger) Profile(ctx context.Context, accountID string) (models.UserProfile, error) {
	return s.profileFn(ctx, accountID)
}

func (s stubLedger) ProfileExists(ctx context.Context, accountID string) (bool, error) {
	return s.profileExistsFn(ctx, accountID)
}

func (s stubLedger) VerifyKYC(ctx context.Context, call services.Call, accountID string) error {
	return s.verifyKYCFn(ctx, call, accountID)
}

func (s stubLedger) CreateCampaign(ctx context.Context, call services.Call, in services.CampaignInput) (uint64, error) {
	return s.createCampaignFn(ctx, call, in)
}

func (s stubLedger) Campaign(ctx context.Context, id uint64) (models.Campaign, error) {
	return s.campaignFn(ctx, id)
}

func (s stubLedger) Contribute(ctx context.Context, call services.Call, id uint64) error {
	return s.contributeFn(ctx, call, id)
}

func (s stubLedger) Withdraw(ctx context.Context, call services.Call, id uint64) (models.Transfer, error) {
	return s.withdrawFn(ctx, call, id)
}

func (s stubLedger) CancelCampaign(ctx context.Context, call services.Call, id uint64) ([]models.Transfer, error) {
	return s.cancelFn(ctx, call, id)
}

func (s stubLedger) CreateLoanRequest(ctx context.Context, call services.Call, in services.LoanRequestInput) (uint64, error) {
	return s.createRequestFn(ctx, call, in)
}

func (s stubLedger) RepayLoan(ctx context.Context, call services.Call, id uint64) (models.Transfer, error) {
	return s.repayFn(ctx, call, id)
}

func (s stubLedger) Vote(ctx context.Context, call services.Call, id uint64, support bool) error {
	return s.voteFn(ctx, call, id, support)
}

func (s stubLedger) AddTrustedMember(ctx context.Context, call services.Call, member string) error {
	return s.addMemberFn(ctx, call, member)
}

func (s stubLedger) IsTrustedMember(ctx context.Context, accountID string) (bool, error) {
	return s.isMemberFn(ctx, accountID)
}

func (s stubLedger) ContributeToTreasury(ctx context.Context, call services.Call) (uint64, error) {
	return s.treasuryFn(ctx, call)
}

func (s stubLedger) Transfers(ctx context.Context, recipient string, from, limit uint64) ([]models.Transfer, error) {
	return s.transfersFn(ctx, recipient, from, limit)
}

func newTestHandler(txRunner db.TxRunner, accounts AccountStore, ledger Ledger) *Handler {
	cfg := config.Config{
		AppEnv:          "test",
		Port:            "0",
		JWTSecret:       testSecret,
		TokenTTL:        time.Minute,
		AllowedOrigins:  "*",
		ContractAccount: testContract,
	}
	h := New(txRunner, cfg, accounts, ledger, websocket.NewHub())
	h.now = func() time.Time { return testNow }
	return h
}

// do sends a request through the full router, authenticated as caller
// unless caller is empty.
func do(t *testing.T, h *Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
		req = httptest.NewRequest(method, path, &buf)
	}
	if caller != "" {
		token, err := auth.GenerateToken(testSecret, caller, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func stringPtr(value string) *string {
	return &value
}

