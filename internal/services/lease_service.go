// internal/services/lease_service.go
package services

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/database"
	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// LeaseService drives the per-token lease state machine:
// Unlisted -> Listed -> Signed/Active -> expired (inert) or Cancelled.
// A zero-price lease naming a lessee is a gift and signs itself on
// create/update. A lessee holds at most one active lease at a time.
type LeaseService struct {
	db       *gorm.DB
	config   *config.Config
	registry AssetRegistry

	// signMu serializes the signing path for the duration of the
	// payment transfer so it cannot be re-entered mid-effect.
	signMu sync.Mutex

	Now func() int64
}

func NewLeaseService(db *gorm.DB, cfg *config.Config, registry AssetRegistry) *LeaseService {
	return &LeaseService{
		db:       db,
		config:   cfg,
		registry: registry,
		Now:      func() int64 { return time.Now().Unix() },
	}
}

func (s *LeaseService) secondsPerDay() int64 {
	if s.config.Staking.SecondsPerDay > 0 {
		return s.config.Staking.SecondsPerDay
	}
	return 86400
}

// Create lists a lease for the caller's token. Gifts (zero price with a
// named lessee) sign immediately so the recipient is spared a second
// call. A token with a live listing or active lease cannot be relisted;
// an expired record is replaced.
func (s *LeaseService) Create(caller string, tokenID int64, durationDays int64, price *big.Int, lessee string) (*models.Lease, error) {
	caller = utils.NormalizeAddress(caller)
	lessee = normalizeLessee(lessee)

	var result *models.Lease
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}

		owner, err := s.registry.OwnerOf(tx, tokenID)
		if err != nil {
			return err
		}
		if owner != caller {
			return ErrNotOwner
		}

		now := s.Now()
		spd := s.secondsPerDay()

		if err := s.validateTerms(tx, state, caller, durationDays, price, lessee, now, spd); err != nil {
			return err
		}

		var existing models.Lease
		err = tx.First(&existing, "token_id = ?", tokenID).Error
		if err == nil {
			if existing.Gates(now, spd) {
				return ErrTokenIsStaked
			}
			// Expired leftover; clear it and its holder pointer.
			if err := clearHolder(tx, existing.Lessee, tokenID); err != nil {
				return err
			}
			if err := tx.Delete(&models.Lease{}, "token_id = ?", tokenID).Error; err != nil {
				return fmt.Errorf("failed to clear expired lease: %w", err)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		lease := models.Lease{
			TokenID:      tokenID,
			Owner:        caller,
			Lessee:       lessee,
			ListedAt:     now,
			DurationDays: durationDays,
		}
		lease.Price.Set(price)

		if err := tx.Create(&lease).Error; err != nil {
			return fmt.Errorf("failed to create lease: %w", err)
		}

		if err := recordEvent(tx, models.EventLeaseCreated, tokenRef(tokenID), caller, models.JSONB{
			"price":         lease.Price.String(),
			"lessee":        lessee,
			"duration_days": durationDays,
		}); err != nil {
			return err
		}

		if lease.IsGift() {
			if err := s.signGift(tx, &lease, now); err != nil {
				return err
			}
		}

		result = &lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the terms of a listing, or of a signed gift before the
// recipient has paid anything. A signed paid lease is immutable.
func (s *LeaseService) Update(caller string, tokenID int64, durationDays int64, price *big.Int, lessee string) (*models.Lease, error) {
	caller = utils.NormalizeAddress(caller)
	lessee = normalizeLessee(lessee)

	var result *models.Lease
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}

		lease, err := loadLease(tx, tokenID)
		if err != nil {
			return err
		}
		if lease == nil {
			return ErrInvalidLease
		}

		owner, err := s.registry.OwnerOf(tx, tokenID)
		if err != nil {
			return err
		}
		if owner != caller {
			return ErrNotOwner
		}

		if !lease.Updatable() {
			return ErrLeaseAlreadySigned
		}

		now := s.Now()
		spd := s.secondsPerDay()

		if err := s.validateTerms(tx, state, caller, durationDays, price, lessee, now, spd); err != nil {
			return err
		}

		// A previously auto-signed gift is being redirected or converted;
		// release the old recipient first.
		if lease.SignedAt > 0 {
			if err := clearHolder(tx, lease.Lessee, tokenID); err != nil {
				return err
			}
		}

		lease.Lessee = lessee
		lease.DurationDays = durationDays
		lease.SignedAt = 0
		lease.Price.Set(price)

		if err := saveLease(tx, lease); err != nil {
			return err
		}

		if err := recordEvent(tx, models.EventLeaseUpdated, tokenRef(tokenID), caller, models.JSONB{
			"price":         lease.Price.String(),
			"lessee":        lessee,
			"duration_days": durationDays,
		}); err != nil {
			return err
		}

		if lease.IsGift() {
			if err := s.signGift(tx, lease, now); err != nil {
				return err
			}
		}

		result = lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel deletes a listing, or a signed gift. A signed paid lease cannot
// be cancelled.
func (s *LeaseService) Cancel(caller string, tokenID int64) error {
	caller = utils.NormalizeAddress(caller)

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		lease, err := loadLease(tx, tokenID)
		if err != nil {
			return err
		}
		if lease == nil {
			return ErrInvalidLease
		}

		owner, err := s.registry.OwnerOf(tx, tokenID)
		if err != nil {
			return err
		}
		if owner != caller {
			return ErrNotOwner
		}

		if !lease.Updatable() {
			return ErrLeaseAlreadySigned
		}

		if lease.SignedAt > 0 {
			if err := clearHolder(tx, lease.Lessee, tokenID); err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Lease{}, "token_id = ?", tokenID).Error; err != nil {
			return fmt.Errorf("failed to delete lease: %w", err)
		}

		return recordEvent(tx, models.EventLeaseCancelled, tokenRef(tokenID), caller, nil)
	})
}

// Sign commits the caller to a listed lease. The payment must equal the
// listed price exactly; on success the owner is credited their earning
// fraction and the remainder accrues to the platform fee pool. The whole
// operation is serialized and atomic: a failed transfer leaves the lease
// unsigned and no funds moved.
func (s *LeaseService) Sign(caller string, tokenID int64, payment *big.Int) (*models.Lease, error) {
	caller = utils.NormalizeAddress(caller)

	s.signMu.Lock()
	defer s.signMu.Unlock()

	var result *models.Lease
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Locked: the fee pool is read-modify-written below.
		state, err := loadPlatformState(lockForUpdate(tx))
		if err != nil {
			return err
		}

		lease, err := loadLease(tx, tokenID)
		if err != nil {
			return err
		}
		if lease == nil || lease.ListedAt == 0 {
			return ErrInvalidLease
		}
		if lease.SignedAt > 0 {
			return ErrLeaseAlreadySigned
		}
		if payment == nil || payment.Cmp(&lease.Price.Int) != 0 {
			return ErrIncorrectFundsAmount
		}

		now := s.Now()
		spd := s.secondsPerDay()

		held, err := holderActive(tx, caller, now, spd)
		if err != nil {
			return err
		}
		if held {
			return ErrHasActiveLease
		}

		if caller == lease.Owner {
			return ErrInvalidLessee
		}
		if lease.Lessee != "" && lease.Lessee != caller {
			return ErrInvalidLessee
		}

		lease.Lessee = caller
		lease.SignedAt = now
		if err := saveLease(tx, lease); err != nil {
			return err
		}

		holder := models.LeaseHolder{Address: caller, TokenID: tokenID}
		if err := tx.Save(&holder).Error; err != nil {
			return fmt.Errorf("failed to update lessee index: %w", err)
		}

		if lease.Price.Sign() > 0 {
			if err := debitCurrency(tx, caller, &lease.Price.Int); err != nil {
				return err
			}

			ownerShare := new(big.Int).Mul(&lease.Price.Int, big.NewInt(state.EarningFractionBps))
			ownerShare.Div(ownerShare, big.NewInt(10000))
			fee := new(big.Int).Sub(&lease.Price.Int, ownerShare)

			if ownerShare.Sign() > 0 {
				if err := creditCurrency(tx, lease.Owner, ownerShare); err != nil {
					return err
				}
			}
			if fee.Sign() > 0 {
				state.FeePool.Add(&state.FeePool.Int, fee)
				if err := savePlatformState(tx, state); err != nil {
					return err
				}
			}

			processedAt := time.Now()
			txn := models.Transaction{
				TransactionType: models.TransactionTypeLeasePayment,
				Payer:           caller,
				Payee:           lease.Owner,
				TokenID:         tokenRef(tokenID),
				Status:          models.TransactionStatusCompleted,
				ProcessedAt:     &processedAt,
			}
			txn.Amount.Set(&lease.Price.Int)
			txn.PlatformFee.Set(fee)
			if err := tx.Create(&txn).Error; err != nil {
				return fmt.Errorf("failed to record lease payment: %w", err)
			}
		}

		if err := recordEvent(tx, models.EventLeaseSigned, tokenRef(tokenID), caller, models.JSONB{
			"price":     lease.Price.String(),
			"signed_at": lease.SignedAt,
			"gift":      false,
		}); err != nil {
			return err
		}

		result = lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LeaseStatus is the derived read view of one token's lease record.
type LeaseStatus struct {
	Lease *models.Lease `json:"lease,omitempty"`
	State string        `json:"state"`
}

func (s *LeaseService) Status(tokenID int64) (*LeaseStatus, error) {
	lease, err := loadLease(s.db, tokenID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return &LeaseStatus{State: "unlisted"}, nil
	}

	now := s.Now()
	spd := s.secondsPerDay()

	switch {
	case lease.IsListed():
		return &LeaseStatus{Lease: lease, State: "listed"}, nil
	case lease.IsActive(now, spd):
		return &LeaseStatus{Lease: lease, State: "active"}, nil
	default:
		return &LeaseStatus{Lease: lease, State: "expired"}, nil
	}
}

// ListOpen returns the listings currently open for signing.
func (s *LeaseService) ListOpen() ([]models.Lease, error) {
	var leases []models.Lease
	err := s.db.Where("listed_at > 0 AND signed_at = 0").Order("token_id asc").Find(&leases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return leases, nil
}

// IsTokenLeased is the lease-side mobility gate: true while the token is
// listed or under an active signed lease.
func (s *LeaseService) IsTokenLeased(tokenID int64) (bool, error) {
	lease, err := loadLease(s.db, tokenID)
	if err != nil {
		return false, err
	}
	if lease == nil {
		return false, nil
	}
	return lease.Gates(s.Now(), s.secondsPerDay()), nil
}

// WithdrawFees moves the accumulated platform fee pool to the given
// account. Owner-role only; surfaced through the admin API.
func (s *LeaseService) WithdrawFees(to string) (*big.Int, error) {
	to = utils.NormalizeAddress(to)

	var withdrawn *big.Int
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(lockForUpdate(tx))
		if err != nil {
			return err
		}
		if state.FeePool.Sign() == 0 {
			return ErrZeroWithdrawal
		}

		amount := new(big.Int).Set(&state.FeePool.Int)
		if err := creditCurrency(tx, to, amount); err != nil {
			return err
		}

		state.FeePool.SetInt64(0)
		if err := savePlatformState(tx, state); err != nil {
			return err
		}

		processedAt := time.Now()
		txn := models.Transaction{
			TransactionType: models.TransactionTypeFeeWithdrawal,
			Payee:           to,
			Status:          models.TransactionStatusCompleted,
			ProcessedAt:     &processedAt,
		}
		txn.Amount.Set(amount)
		txn.PlatformFee.SetInt64(0)
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("failed to record fee withdrawal: %w", err)
		}

		withdrawn = amount
		return recordEvent(tx, models.EventFeesWithdrawn, nil, to, models.JSONB{
			"amount": amount.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return withdrawn, nil
}

// validateTerms applies the shared create/update checks.
func (s *LeaseService) validateTerms(tx *gorm.DB, state *models.PlatformState, caller string, durationDays int64, price *big.Int, lessee string, now, spd int64) error {
	if durationDays <= 0 || durationDays > state.MaxLeaseDurationDays {
		return ErrInvalidDuration
	}
	if lessee != "" && lessee == caller {
		return ErrInvalidLessee
	}

	// Gifting to someone already under an active lease would strand the
	// auto-sign, so it is rejected up front.
	if price.Sign() == 0 && lessee != "" {
		held, err := holderActive(tx, lessee, now, spd)
		if err != nil {
			return err
		}
		if held {
			return ErrInvalidLessee
		}
	}
	return nil
}

// signGift marks a zero-price named-lessee record signed in place.
func (s *LeaseService) signGift(tx *gorm.DB, lease *models.Lease, now int64) error {
	lease.SignedAt = now
	if err := saveLease(tx, lease); err != nil {
		return err
	}

	holder := models.LeaseHolder{Address: lease.Lessee, TokenID: lease.TokenID}
	if err := tx.Save(&holder).Error; err != nil {
		return fmt.Errorf("failed to update lessee index: %w", err)
	}

	return recordEvent(tx, models.EventLeaseSigned, tokenRef(lease.TokenID), lease.Owner, models.JSONB{
		"lessee":    lease.Lessee,
		"price":     "0",
		"signed_at": now,
		"gift":      true,
	})
}

// holderActive reports whether address currently holds a signed lease
// that has not yet run out.
func holderActive(tx *gorm.DB, address string, now, spd int64) (bool, error) {
	var holder models.LeaseHolder
	err := tx.First(&holder, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	lease, err := loadLease(tx, holder.TokenID)
	if err != nil {
		return false, err
	}
	if lease == nil || lease.Lessee != address {
		return false, nil
	}
	return lease.IsActive(now, spd), nil
}

func clearHolder(tx *gorm.DB, address string, tokenID int64) error {
	if address == "" {
		return nil
	}
	err := tx.Delete(&models.LeaseHolder{}, "address = ? AND token_id = ?", address, tokenID).Error
	if err != nil {
		return fmt.Errorf("failed to clear lessee index: %w", err)
	}
	return nil
}

func loadLease(db *gorm.DB, tokenID int64) (*models.Lease, error) {
	var lease models.Lease
	err := db.First(&lease, "token_id = ?", tokenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &lease, nil
}

func saveLease(db *gorm.DB, lease *models.Lease) error {
	err := db.Model(&models.Lease{}).
		Where("token_id = ?", lease.TokenID).
		Updates(map[string]interface{}{
			"owner":         lease.Owner,
			"price":         lease.Price,
			"lessee":        lease.Lessee,
			"listed_at":     lease.ListedAt,
			"duration_days": lease.DurationDays,
			"signed_at":     lease.SignedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save lease: %w", err)
	}
	return nil
}

func normalizeLessee(lessee string) string {
	if lessee == "" {
		return ""
	}
	return utils.NormalizeAddress(lessee)
}
