package services

import (
	"context"
	"database/sql"
	"errors"

	"fundchain/internal/models"
	"fundchain/internal/store"
)

type directory struct {
	profiles ProfileStore
}

// lookup loads and locks a profile, mapping a missing row to ErrProfileNotFound.
func (d *directory) lookup(ctx context.Context, tx store.DB, accountID string) (models.UserProfile, error) {
	profile, err := d.profiles.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return models.UserProfile{}, notFound(err, ErrProfileNotFound)
	}
	return profile, nil
}

func (d *directory) create(ctx context.Context, tx store.DB, accountID, username string, bio *string) error {
	_, err := d.profiles.GetForUpdate(ctx, tx, accountID)
	if err == nil {
		return ErrProfileExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return d.profiles.Create(ctx, tx, accountID, username, bio)
}

func requireAffected(n int64, err error, missing error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func (l *Ledger) CreateProfile(ctx context.Context, call Call, username string, bio *string) error {
	_, err := l.execute(ctx, call, "create_profile", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(call.Caller)
		fx.touch(call.Caller)
		return l.directory.create(ctx, tx, call.Caller, username, bio)
	})
	return err
}

// UpdateProfile overwrites the caller's bio. A nil bio clears it.
func (l *Ledger) UpdateProfile(ctx context.Context, call Call, bio *string) error {
	_, err := l.execute(ctx, call, "update_profile", func(tx store.DB, fx *effects) error {
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(call.Caller)
		fx.touch(call.Caller)
		n, err := l.directory.profiles.UpdateBio(ctx, tx, call.Caller, bio)
		return requireAffected(n, err, ErrProfileNotFound)
	})
	return err
}

func (l *Ledger) VerifyKYC(ctx context.Context, call Call, accountID string) error {
	_, err := l.execute(ctx, call, "verify_kyc", func(tx store.DB, fx *effects) error {
		if err := l.requirePrivileged(call); err != nil {
			return err
		}
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(accountID)
		fx.touch(accountID)
		n, err := l.directory.profiles.SetKYCVerified(ctx, tx, accountID)
		return requireAffected(n, err, ErrProfileNotFound)
	})
	return err
}

// RemoveProfile deletes a profile. Campaigns and loans that mention the
// account keep their references.
func (l *Ledger) RemoveProfile(ctx context.Context, call Call, accountID string) error {
	_, err := l.execute(ctx, call, "remove_profile", func(tx store.DB, fx *effects) error {
		if err := l.requirePrivileged(call); err != nil {
			return err
		}
		if err := call.requireNoDeposit(); err != nil {
			return err
		}
		fx.targetAccount(accountID)
		fx.touch(accountID)
		n, err := l.directory.profiles.Delete(ctx, tx, accountID)
		return requireAffected(n, err, ErrProfileNotFound)
	})
	return err
}

func (l *Ledger) Profile(ctx context.Context, accountID string) (models.UserProfile, error) {
	if profile, ok := l.cache.GetProfile(ctx, accountID); ok {
		return profile, nil
	}
	profile, err := l.directory.profiles.Get(ctx, accountID)
	if err != nil {
		return models.UserProfile{}, notFound(err, ErrProfileNotFound)
	}
	l.cache.SetProfile(ctx, profile)
	return profile, nil
}

func (l *Ledger) ProfileExists(ctx context.Context, accountID string) (bool, error) {
	return l.directory.profiles.Exists(ctx, accountID)
}
