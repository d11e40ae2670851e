package services

import (
	"database/sql"
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by the ledger wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrAlreadyExists      = errors.New("already exists")
)

func kindError(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

var (
	ErrCallerRequired    = kindError(ErrPermissionDenied, "caller identity required")
	ErrNotPrivileged     = kindError(ErrPermissionDenied, "only the contract account can perform this action")
	ErrUserBanned        = kindError(ErrPermissionDenied, "user is banned")
	ErrKYCRequired       = kindError(ErrPermissionDenied, "KYC verification required for this funding goal")
	ErrNotCampaignOwner  = kindError(ErrPermissionDenied, "only the campaign creator can perform this action")
	ErrNotBorrower       = kindError(ErrPermissionDenied, "only the borrower can repay the loan")
	ErrNotTrustedMember  = kindError(ErrPermissionDenied, "only trusted members can perform this action")
	ErrProfileNotFound   = kindError(ErrNotFound, "user profile does not exist")
	ErrCampaignNotFound  = kindError(ErrNotFound, "campaign does not exist")
	ErrStatsNotFound     = kindError(ErrNotFound, "campaign stats do not exist")
	ErrRequestNotFound   = kindError(ErrNotFound, "loan request does not exist")
	ErrLoanNotFound      = kindError(ErrNotFound, "loan does not exist")
	ErrProposalNotFound  = kindError(ErrNotFound, "proposal does not exist")
	ErrAlreadyClaimed    = kindError(ErrInvalidState, "funds already claimed")
	ErrAlreadyFulfilled  = kindError(ErrInvalidState, "loan request already fulfilled")
	ErrAlreadyRepaid     = kindError(ErrInvalidState, "loan already repaid")
	ErrAlreadyExecuted   = kindError(ErrInvalidState, "proposal already executed")
	ErrAlreadyVoted      = kindError(ErrInvalidState, "member already voted on this proposal")
	ErrCampaignEnded     = kindError(ErrPreconditionFailed, "crowdfunding period has ended")
	ErrCampaignNotEnded  = kindError(ErrPreconditionFailed, "crowdfunding period has not ended")
	ErrGoalNotMet        = kindError(ErrPreconditionFailed, "funding goal not reached")
	ErrGoalReached       = kindError(ErrPreconditionFailed, "funding goal was reached")
	ErrHasContributions  = kindError(ErrPreconditionFailed, "campaign already has contributions")
	ErrDepositTooLow     = kindError(ErrPreconditionFailed, "attached deposit is too low")
	ErrDepositNotAllowed = kindError(ErrPreconditionFailed, "operation does not accept an attached deposit")
	ErrAmountOverflow    = kindError(ErrPreconditionFailed, "amount overflow")
	ErrNotEnoughVotes    = kindError(ErrPreconditionFailed, "not enough votes to execute the proposal")
	ErrProfileExists     = kindError(ErrAlreadyExists, "user profile already exists")
)

// notFound maps sql.ErrNoRows to the entity's NotFound error.
func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}
