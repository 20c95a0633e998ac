// internal/services/admin_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/database"
	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// AdminService carries the operator-only knobs: emission rates, rarity
// assignments, allowed rental durations, marketplace parameters, and the
// staking pause switch.
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{db: db, config: cfg}
}

// SetEmissionRate sets the per-day reward for one rarity class, in whole
// tokens per day. Existing stakes keep the rate snapshotted when they
// were created; only new stakes pick this up.
func (s *AdminService) SetEmissionRate(rarityClass int, tokensPerDay int64) error {
	if tokensPerDay < 0 {
		return ErrZeroEmissionRate
	}

	// Save would treat rarity class 0 as an unset key and always insert.
	rate := models.EmissionRate{RarityClass: rarityClass, TokensPerDay: tokensPerDay}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rarity_class"}},
		DoUpdates: clause.AssignmentColumns([]string{"tokens_per_day"}),
	}).Create(&rate).Error
	if err != nil {
		return fmt.Errorf("failed to set emission rate: %w", err)
	}
	return nil
}

func (s *AdminService) ListEmissionRates() ([]models.EmissionRate, error) {
	var rates []models.EmissionRate
	if err := s.db.Order("rarity_class asc").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch emission rates: %w", err)
	}
	return rates, nil
}

// SetRarities assigns rarity classes to a batch of tokens. All-or-nothing:
// an unknown token id aborts the whole batch.
func (s *AdminService) SetRarities(tokenIDs []int64, rarityClasses []int) error {
	if len(tokenIDs) == 0 || len(tokenIDs) != len(rarityClasses) {
		return ErrEmptyBatch
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		for i, tokenID := range tokenIDs {
			result := tx.Model(&models.Asset{}).
				Where("token_id = ?", tokenID).
				Update("rarity_class", rarityClasses[i])
			if result.Error != nil {
				return fmt.Errorf("failed to set rarity: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrAssetNotFound
			}
		}
		return nil
	})
}

// AddRentalDuration allows a new pass length, in days.
func (s *AdminService) AddRentalDuration(days int64) error {
	if days <= 0 {
		return ErrInvalidDuration
	}
	duration := models.RentalDuration{Days: days}
	if err := s.db.Save(&duration).Error; err != nil {
		return fmt.Errorf("failed to add rental duration: %w", err)
	}
	return nil
}

// RemoveRentalDuration disallows a pass length for future rentals. Passes
// already granted at that length run to their expiry.
func (s *AdminService) RemoveRentalDuration(days int64) error {
	result := s.db.Delete(&models.RentalDuration{}, "days = ?", days)
	if result.Error != nil {
		return fmt.Errorf("failed to remove rental duration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidDuration
	}
	return nil
}

func (s *AdminService) ListRentalDurations() ([]models.RentalDuration, error) {
	var durations []models.RentalDuration
	if err := s.db.Order("days asc").Find(&durations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch rental durations: %w", err)
	}
	return durations, nil
}

// SetEarningFraction sets the owner's share of lease payments in basis
// points. Applies to leases signed after the change.
func (s *AdminService) SetEarningFraction(bps int64) error {
	if bps < 0 || bps > 10000 {
		return ErrInvalidFraction
	}
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}
		state.EarningFractionBps = bps
		return savePlatformState(tx, state)
	})
}

// SetMaxLeaseDuration caps the longest lease an owner may list.
func (s *AdminService) SetMaxLeaseDuration(days int64) error {
	if days <= 0 {
		return ErrInvalidDuration
	}
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}
		state.MaxLeaseDurationDays = days
		return savePlatformState(tx, state)
	})
}

// SetStakingPaused flips the pause switch guarding stake, unstake and
// claim.
func (s *AdminService) SetStakingPaused(paused bool) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}
		state.StakingPaused = paused
		return savePlatformState(tx, state)
	})
}

func (s *AdminService) GetPlatformState() (*models.PlatformState, error) {
	return loadPlatformState(s.db)
}

// ListEvents pages through the persisted event stream, optionally
// filtered by event type or token.
func (s *AdminService) ListEvents(eventType string, tokenID *int64, params utils.PaginationParams) ([]models.LedgerEvent, int64, error) {
	query := s.db.Model(&models.LedgerEvent{})
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if tokenID != nil {
		query = query.Where("token_id = ?", *tokenID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	allowedSortFields := []string{"created_at", "event_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var events []models.LedgerEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch events: %w", err)
	}
	return events, total, nil
}

// DashboardStats is the operator overview: collection and ledger counts
// plus the current fee pool.
type DashboardStats struct {
	TotalAssets   int64  `json:"total_assets"`
	StakedAssets  int64  `json:"staked_assets"`
	OpenListings  int64  `json:"open_listings"`
	SignedLeases  int64  `json:"signed_leases"`
	Transactions  int64  `json:"transactions"`
	FeePool       string `json:"fee_pool"`
	StakingPaused bool   `json:"staking_paused"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&models.Asset{}).Count(&stats.TotalAssets).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}
	if err := s.db.Model(&models.StakedAsset{}).Count(&stats.StakedAssets).Error; err != nil {
		return nil, fmt.Errorf("failed to count staked assets: %w", err)
	}
	if err := s.db.Model(&models.Lease{}).
		Where("listed_at > 0 AND signed_at = 0").
		Count(&stats.OpenListings).Error; err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	if err := s.db.Model(&models.Lease{}).
		Where("signed_at > 0").
		Count(&stats.SignedLeases).Error; err != nil {
		return nil, fmt.Errorf("failed to count leases: %w", err)
	}
	if err := s.db.Model(&models.Transaction{}).Count(&stats.Transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	state, err := loadPlatformState(s.db)
	if err != nil {
		return nil, err
	}
	stats.FeePool = state.FeePool.String()
	stats.StakingPaused = state.StakingPaused
	return stats, nil
}
