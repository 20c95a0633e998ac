// internal/services/platform.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/models"
)

// loadPlatformState fetches the singleton configuration row, creating it
// with defaults if the seed never ran.
func loadPlatformState(db *gorm.DB) (*models.PlatformState, error) {
	var state models.PlatformState
	err := db.First(&state, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = models.PlatformState{
			ID:                   1,
			EarningFractionBps:   8000,
			MaxLeaseDurationDays: 365,
			FeePool:              models.NewBigInt(0),
		}
		if err := db.Create(&state).Error; err != nil {
			return nil, fmt.Errorf("failed to create platform state: %w", err)
		}
		return &state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &state, nil
}

func savePlatformState(db *gorm.DB, state *models.PlatformState) error {
	err := db.Model(&models.PlatformState{}).
		Where("id = ?", 1).
		Updates(map[string]interface{}{
			"earning_fraction_bps":    state.EarningFractionBps,
			"max_lease_duration_days": state.MaxLeaseDurationDays,
			"staking_paused":          state.StakingPaused,
			"fee_pool":                state.FeePool,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save platform state: %w", err)
	}
	return nil
}
