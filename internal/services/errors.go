// internal/services/errors.go
package services

import "errors"

// Domain failures are sentinel errors so handlers and callers can branch
// with errors.Is. Every failure aborts its operation with no partial
// effect; nothing here is retried automatically.
var (
	// Staking
	ErrNotOwner         = errors.New("caller does not own the token")
	ErrAlreadyStaked    = errors.New("token is already staked")
	ErrNotStaked        = errors.New("token is not staked")
	ErrZeroEmissionRate = errors.New("token rarity has no emission rate")
	ErrEmptyBatch       = errors.New("token id batch is empty")
	ErrNoStakedAssets   = errors.New("caller has no staked tokens")
	ErrActiveRentalPass = errors.New("token has an active rental pass")
	ErrFirstAssetLocked = errors.New("first staked token cannot be removed while others remain")
	ErrZeroAccrual      = errors.New("no rewards have accrued")
	ErrStakingPaused    = errors.New("staking operations are paused")

	// Rental passes
	ErrInvalidDuration        = errors.New("duration is not allowed")
	ErrRecipientIsHolder      = errors.New("recipient already holds a collection token")
	ErrRecipientHasActivePass = errors.New("recipient already has an active pass")
	ErrSecondPassUnavailable  = errors.New("first staked token grants a single pass")
	ErrSlotOccupied           = errors.New("pass slot is occupied")

	// Leasing
	ErrTokenIsStaked        = errors.New("token already has a listed or active lease")
	ErrInvalidLessee        = errors.New("lessee is not valid for this lease")
	ErrInvalidLease         = errors.New("no lease is listed for the token")
	ErrLeaseAlreadySigned   = errors.New("lease is already signed")
	ErrIncorrectFundsAmount = errors.New("payment does not match the lease price")
	ErrHasActiveLease       = errors.New("caller already holds an active lease")
	ErrInsufficientFunds    = errors.New("insufficient balance for payment")
	ErrZeroWithdrawal       = errors.New("fee pool is empty")
	ErrInvalidFraction      = errors.New("earning fraction exceeds 10000 basis points")

	// Payments
	ErrTransactionNotFound = errors.New("transaction not found")

	// Shared
	ErrAssetNotFound = errors.New("token id is not part of the collection")

	// Auth
	ErrInvalidCredentials = errors.New("invalid username or password")
)
