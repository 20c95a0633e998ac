// internal/services/staking_service.go
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

// rewardScale is the fixed-point scale applied to snapshot emission rates.
var rewardScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// StakingService owns the staking ledger and the yield accrual engine.
// Accrual is day-exact: rewards are computed on whole elapsed days and the
// checkpoint advances by exactly those days, so a sub-day remainder is
// neither lost nor double counted.
type StakingService struct {
	db       *gorm.DB
	config   *config.Config
	registry AssetRegistry
	minter   RewardMinter

	// mintMu serializes every path that ends in a reward mint, so a
	// nested or concurrent invocation cannot interleave with an
	// in-flight external effect.
	mintMu sync.Mutex

	// Now is the ledger clock in unix seconds; tests swap it out.
	Now func() int64
}

func NewStakingService(db *gorm.DB, cfg *config.Config, registry AssetRegistry, minter RewardMinter) *StakingService {
	return &StakingService{
		db:       db,
		config:   cfg,
		registry: registry,
		minter:   minter,
		Now:      func() int64 { return time.Now().Unix() },
	}
}

func (s *StakingService) secondsPerDay() int64 {
	if s.config.Staking.SecondsPerDay > 0 {
		return s.config.Staking.SecondsPerDay
	}
	return 86400
}

// StakeResult reports the snapshot taken at stake time.
type StakeResult struct {
	TokenID      int64         `json:"token_id"`
	EmissionRate models.BigInt `json:"emission_rate"`
	FirstStaked  bool          `json:"first_staked"`
	StakedAt     int64         `json:"staked_at"`
}

// Stake creates the staking record for tokenID with the emission rate
// snapshotted from the token's current rarity class.
func (s *StakingService) Stake(caller string, tokenID int64) (*StakeResult, error) {
	caller = utils.NormalizeAddress(caller)

	var result *StakeResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}
		if state.StakingPaused {
			return ErrStakingPaused
		}

		owner, err := s.registry.OwnerOf(tx, tokenID)
		if err != nil {
			return err
		}
		if owner != caller {
			return ErrNotOwner
		}

		var existing models.StakedAsset
		err = tx.First(&existing, "token_id = ?", tokenID).Error
		if err == nil {
			return ErrAlreadyStaked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		rate, err := s.emissionRateFor(tx, tokenID)
		if err != nil {
			return err
		}
		if rate == 0 {
			return ErrZeroEmissionRate
		}

		staker, err := loadOrCreateStaker(tx, caller)
		if err != nil {
			return err
		}

		now := s.Now()
		record := models.StakedAsset{
			TokenID:     tokenID,
			Owner:       caller,
			StakedAt:    now,
			FirstStaked: len(staker.StakedTokenIDs) == 0,
		}
		record.EmissionRate.Mul(big.NewInt(rate), rewardScale)

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create staking record: %w", err)
		}

		staker.StakedTokenIDs = append(staker.StakedTokenIDs, tokenID)
		if err := saveStaker(tx, staker); err != nil {
			return err
		}

		result = &StakeResult{
			TokenID:      tokenID,
			EmissionRate: record.EmissionRate,
			FirstStaked:  record.FirstStaked,
			StakedAt:     now,
		}

		return recordEvent(tx, models.EventTokenStaked, tokenRef(tokenID), caller, models.JSONB{
			"emission_rate": record.EmissionRate.String(),
			"first_staked":  record.FirstStaked,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnstakeResult reports the outcome of one unstake batch.
type UnstakeResult struct {
	TokenIDs []int64       `json:"token_ids"`
	Reward   models.BigInt `json:"reward"`
}

// Unstake removes a batch of the caller's staked tokens and mints the
// rewards accrued on whole elapsed days. A token carrying an unexpired
// rental pass cannot be unstaked, and the owner's designated first-staked
// token may not be stranded behind others by a partial batch.
func (s *StakingService) Unstake(caller string, tokenIDs []int64) (*UnstakeResult, error) {
	if len(tokenIDs) == 0 {
		return nil, ErrEmptyBatch
	}
	caller = utils.NormalizeAddress(caller)

	s.mintMu.Lock()
	defer s.mintMu.Unlock()

	var result *UnstakeResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}
		if state.StakingPaused {
			return ErrStakingPaused
		}

		staker, err := loadStaker(tx, caller)
		if err != nil {
			return err
		}
		if staker == nil || len(staker.StakedTokenIDs) == 0 {
			return ErrNoStakedAssets
		}

		now := s.Now()
		spd := s.secondsPerDay()
		preCount := len(staker.StakedTokenIDs)
		total := new(big.Int)

		for _, tokenID := range tokenIDs {
			var record models.StakedAsset
			err := tx.First(&record, "token_id = ?", tokenID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotStaked
			}
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if record.Owner != caller {
				return ErrNotOwner
			}
			if record.HasActivePass(now) {
				return ErrActiveRentalPass
			}

			days := (now - record.StakedAt) / spd
			if days > 0 {
				reward := new(big.Int).Mul(big.NewInt(days), &record.EmissionRate.Int)
				total.Add(total, reward)
			}

			if err := tx.Delete(&models.StakedAsset{}, "token_id = ?", tokenID).Error; err != nil {
				return fmt.Errorf("failed to delete staking record: %w", err)
			}

			var removed bool
			staker.StakedTokenIDs, removed = staker.StakedTokenIDs.SwapRemove(tokenID)
			if !removed {
				return ErrNotStaked
			}
		}

		// A partial batch must leave the first-staked token at the head
		// of the remaining list; re-validated after the removals.
		if len(tokenIDs) < preCount && len(staker.StakedTokenIDs) > 0 {
			var head models.StakedAsset
			if err := tx.First(&head, "token_id = ?", staker.StakedTokenIDs[0]).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if !head.FirstStaked {
				return ErrFirstAssetLocked
			}
		}

		if total.Sign() > 0 {
			if err := s.minter.Mint(tx, caller, total); err != nil {
				return fmt.Errorf("reward mint failed: %w", err)
			}
			staker.LifetimeMinted.Add(&staker.LifetimeMinted.Int, total)
		}

		if err := saveStaker(tx, staker); err != nil {
			return err
		}

		result = &UnstakeResult{TokenIDs: tokenIDs}
		result.Reward.Set(total)

		return recordEvent(tx, models.EventTokenUnstaked, nil, caller, models.JSONB{
			"token_ids": tokenIDs,
			"reward":    total.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClaimResult reports one claim cycle.
type ClaimResult struct {
	Reward   models.BigInt `json:"reward"`
	TokenIDs []int64       `json:"token_ids"`
}

// Claim mints every whole-day reward accrued across the caller's staked
// tokens and advances each checkpoint by exactly the days claimed. The
// checkpoint never collapses to the current time: the sub-day remainder
// keeps accruing toward the next cycle.
func (s *StakingService) Claim(caller string) (*ClaimResult, error) {
	caller = utils.NormalizeAddress(caller)

	s.mintMu.Lock()
	defer s.mintMu.Unlock()

	var result *ClaimResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		state, err := loadPlatformState(tx)
		if err != nil {
			return err
		}
		if state.StakingPaused {
			return ErrStakingPaused
		}

		staker, err := loadStaker(tx, caller)
		if err != nil {
			return err
		}
		if staker == nil || len(staker.StakedTokenIDs) == 0 {
			return ErrNoStakedAssets
		}

		now := s.Now()
		spd := s.secondsPerDay()
		total := new(big.Int)

		for _, tokenID := range staker.StakedTokenIDs {
			var record models.StakedAsset
			if err := tx.First(&record, "token_id = ?", tokenID).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}

			days := (now - record.StakedAt) / spd
			if days <= 0 {
				continue
			}

			reward := new(big.Int).Mul(big.NewInt(days), &record.EmissionRate.Int)
			total.Add(total, reward)

			if err := tx.Model(&models.StakedAsset{}).
				Where("token_id = ?", tokenID).
				Update("staked_at", record.StakedAt+days*spd).Error; err != nil {
				return fmt.Errorf("failed to advance checkpoint: %w", err)
			}
		}

		if total.Sign() == 0 {
			return ErrZeroAccrual
		}

		if err := s.minter.Mint(tx, caller, total); err != nil {
			return fmt.Errorf("reward mint failed: %w", err)
		}

		staker.LifetimeMinted.Add(&staker.LifetimeMinted.Int, total)
		if err := saveStaker(tx, staker); err != nil {
			return err
		}

		result = &ClaimResult{TokenIDs: staker.StakedTokenIDs}
		result.Reward.Set(total)

		return recordEvent(tx, models.EventRewardsClaimed, nil, caller, models.JSONB{
			"reward":    total.String(),
			"token_ids": staker.StakedTokenIDs,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StakingStatus is the canonical read view of one owner's staking state.
type StakingStatus struct {
	Address        string        `json:"address"`
	StakedTokenIDs []int64       `json:"staked_token_ids"`
	DailyYield     models.BigInt `json:"daily_yield"`
	Claimable      models.BigInt `json:"claimable"`
	LifetimeMinted models.BigInt `json:"lifetime_minted"`
}

// Status reports the staked ids, summed daily yield, currently claimable
// amount, and lifetime minted total for owner. It applies the same
// whole-day formula the mutating paths use.
func (s *StakingService) Status(owner string) (*StakingStatus, error) {
	owner = utils.NormalizeAddress(owner)

	status := &StakingStatus{
		Address:        owner,
		StakedTokenIDs: []int64{},
	}

	staker, err := loadStaker(s.db, owner)
	if err != nil {
		return nil, err
	}
	if staker == nil {
		return status, nil
	}

	now := s.Now()
	spd := s.secondsPerDay()
	daily := new(big.Int)
	claimable := new(big.Int)

	for _, tokenID := range staker.StakedTokenIDs {
		var record models.StakedAsset
		if err := s.db.First(&record, "token_id = ?", tokenID).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}

		daily.Add(daily, &record.EmissionRate.Int)

		days := (now - record.StakedAt) / spd
		if days > 0 {
			claimable.Add(claimable, new(big.Int).Mul(big.NewInt(days), &record.EmissionRate.Int))
		}
	}

	status.StakedTokenIDs = append(status.StakedTokenIDs, staker.StakedTokenIDs...)
	status.DailyYield.Set(daily)
	status.Claimable.Set(claimable)
	status.LifetimeMinted.Set(&staker.LifetimeMinted.Int)
	return status, nil
}

// IsTokenStaked reports whether a staking record exists for the token.
// This is the staking-side mobility gate consumed by the NFT contract's
// transfer guard; pass validity does not factor in.
func (s *StakingService) IsTokenStaked(tokenID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.StakedAsset{}).Where("token_id = ?", tokenID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

func (s *StakingService) emissionRateFor(tx *gorm.DB, tokenID int64) (int64, error) {
	var asset models.Asset
	if err := tx.First(&asset, "token_id = ?", tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAssetNotFound
		}
		return 0, fmt.Errorf("database error: %w", err)
	}

	var rate models.EmissionRate
	err := tx.First(&rate, "rarity_class = ?", asset.RarityClass).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return rate.TokensPerDay, nil
}

func loadStaker(db *gorm.DB, address string) (*models.StakerRecord, error) {
	var staker models.StakerRecord
	err := db.First(&staker, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &staker, nil
}

func loadOrCreateStaker(db *gorm.DB, address string) (*models.StakerRecord, error) {
	staker, err := loadStaker(db, address)
	if err != nil {
		return nil, err
	}
	if staker != nil {
		return staker, nil
	}

	staker = &models.StakerRecord{
		Address:        address,
		StakedTokenIDs: models.Int64List{},
		LifetimeMinted: models.NewBigInt(0),
	}
	if err := db.Create(staker).Error; err != nil {
		return nil, fmt.Errorf("failed to create staker record: %w", err)
	}
	return staker, nil
}

func saveStaker(db *gorm.DB, staker *models.StakerRecord) error {
	err := db.Model(&models.StakerRecord{}).
		Where("address = ?", staker.Address).
		Updates(map[string]interface{}{
			"staked_token_ids": staker.StakedTokenIDs,
			"lifetime_minted":  staker.LifetimeMinted,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save staker record: %w", err)
	}
	return nil
}
