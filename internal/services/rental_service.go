// internal/services/rental_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/database"
	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// RentalService grants time-boxed access passes on staked tokens. Each
// staked token carries two fixed slots; a recipient may hold at most one
// unexpired pass across the whole collection, enforced at grant time via
// the reverse recipient index.
type RentalService struct {
	db       *gorm.DB
	config   *config.Config
	registry AssetRegistry

	Now func() int64
}

func NewRentalService(db *gorm.DB, cfg *config.Config, registry AssetRegistry) *RentalService {
	return &RentalService{
		db:       db,
		config:   cfg,
		registry: registry,
		Now:      func() int64 { return time.Now().Unix() },
	}
}

func (s *RentalService) secondsPerDay() int64 {
	if s.config.Staking.SecondsPerDay > 0 {
		return s.config.Staking.SecondsPerDay
	}
	return 86400
}

// RentResult reports the granted pass.
type RentResult struct {
	TokenID   int64           `json:"token_id"`
	Recipient string          `json:"recipient"`
	Slot      models.PassSlot `json:"slot"`
	Expires   int64           `json:"expires"`
}

// Rent grants a pass on the caller's staked token to recipient in the
// chosen slot for durationDays. The first-staked token only ever grants
// its first slot.
func (s *RentalService) Rent(caller string, tokenID int64, recipient string, slot models.PassSlot, durationDays int64) (*RentResult, error) {
	caller = utils.NormalizeAddress(caller)
	recipient = utils.NormalizeAddress(recipient)

	var result *RentResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		allowed, err := durationAllowed(tx, durationDays)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrInvalidDuration
		}

		var record models.StakedAsset
		err = tx.First(&record, "token_id = ?", tokenID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotStaked
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if record.Owner != caller {
			return ErrNotOwner
		}

		balance, err := s.registry.BalanceOf(tx, recipient)
		if err != nil {
			return err
		}
		if balance >= 1 {
			return ErrRecipientIsHolder
		}

		now := s.Now()

		active, err := s.recipientPassActive(tx, recipient, now)
		if err != nil {
			return err
		}
		if active {
			return ErrRecipientHasActivePass
		}

		if slot == models.PassSlotSecond && record.FirstStaked {
			return ErrSecondPassUnavailable
		}
		if record.SlotExpiry(slot) >= now {
			return ErrSlotOccupied
		}

		expires := now + durationDays*s.secondsPerDay()
		record.SetSlot(slot, recipient, expires)

		if err := tx.Model(&models.StakedAsset{}).
			Where("token_id = ?", tokenID).
			Updates(map[string]interface{}{
				"pass1_recipient": record.Pass1Recipient,
				"pass1_expires":   record.Pass1Expires,
				"pass2_recipient": record.Pass2Recipient,
				"pass2_expires":   record.Pass2Expires,
			}).Error; err != nil {
			return fmt.Errorf("failed to write pass slot: %w", err)
		}

		// The reverse index tracks the most recent grant only.
		pointer := models.PassRecipient{Address: recipient, TokenID: tokenID}
		if err := tx.Save(&pointer).Error; err != nil {
			return fmt.Errorf("failed to update recipient index: %w", err)
		}

		result = &RentResult{
			TokenID:   tokenID,
			Recipient: recipient,
			Slot:      slot,
			Expires:   expires,
		}

		return recordEvent(tx, models.EventTokenRented, tokenRef(tokenID), caller, models.JSONB{
			"recipient": recipient,
			"slot":      int(slot),
			"expires":   expires,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecipientStatus is the read view of one recipient's latest pass grant.
type RecipientStatus struct {
	Recipient string          `json:"recipient"`
	TokenID   int64           `json:"token_id,omitempty"`
	Slot      models.PassSlot `json:"slot,omitempty"`
	Expires   int64           `json:"expires,omitempty"`
	Active    bool            `json:"active"`
}

// Status resolves the recipient index and reports whichever slot names
// the recipient on that token, and whether it is still unexpired.
func (s *RentalService) Status(recipient string) (*RecipientStatus, error) {
	recipient = utils.NormalizeAddress(recipient)
	status := &RecipientStatus{Recipient: recipient}

	var pointer models.PassRecipient
	err := s.db.First(&pointer, "address = ?", recipient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var record models.StakedAsset
	err = s.db.First(&record, "token_id = ?", pointer.TokenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Token was unstaked since the grant; the pass died with it.
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	slot, expires, ok := record.PassFor(recipient)
	if !ok {
		return status, nil
	}

	status.TokenID = pointer.TokenID
	status.Slot = slot
	status.Expires = expires
	status.Active = expires >= s.Now()
	return status, nil
}

// recipientPassActive checks the single-pointer index: only the most
// recent grant is ever consulted, and only the slot naming the recipient
// on that token counts.
func (s *RentalService) recipientPassActive(tx *gorm.DB, recipient string, now int64) (bool, error) {
	var pointer models.PassRecipient
	err := tx.First(&pointer, "address = ?", recipient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	var record models.StakedAsset
	err = tx.First(&record, "token_id = ?", pointer.TokenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	_, expires, ok := record.PassFor(recipient)
	return ok && expires >= now, nil
}

func durationAllowed(tx *gorm.DB, days int64) (bool, error) {
	if days <= 0 {
		return false, nil
	}
	var count int64
	if err := tx.Model(&models.RentalDuration{}).Where("days = ?", days).Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}
