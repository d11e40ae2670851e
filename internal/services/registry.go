package services

import (
	"context"

	"fundchain/internal/store"
)

// registry keeps the compliance sets: verified and banned accounts.
type registry struct {
	store RegistryStore
}

func (r *registry) verifyUser(ctx context.Context, tx store.DB, actor string) error {
	banned, err := r.store.IsBanned(ctx, tx, actor)
	if err != nil {
		return err
	}
	if banned {
		return ErrUserBanned
	}
	return r.store.AddVerified(ctx, tx, actor)
}

func (r *registry) unbanUser(ctx context.Context, tx store.DB, actor string) error {
	return r.store.RemoveBanned(ctx, tx, actor)
}

// VerifyUser adds actor to the verified set. Banned accounts cannot be
// verified; verifying twice is a no-op.
func (l *Ledger) VerifyUser(ctx context.Context, call Call, actor string) error {
	_, err := l.execute(ctx, call, "verify_user", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(actor)
		return l.registry.verifyUser(ctx, tx, actor)
	})
	return err
}

func (l *Ledger) UnbanUser(ctx context.Context, call Call, actor string) error {
	_, err := l.execute(ctx, call, "unban_user", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(actor)
		return l.registry.unbanUser(ctx, tx, actor)
	})
	return err
}

func (l *Ledger) RegistryStatus(ctx context.Context, actor string) (store.RegistryStatus, error) {
	return l.registry.store.Status(ctx, actor)
}
