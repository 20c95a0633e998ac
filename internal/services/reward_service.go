// internal/services/reward_service.go
package services

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// RewardMinter is the reward token's mint capability, consumed as an
// opaque effect by the accrual engine. Mint runs inside the caller's
// transaction so a failed operation never leaves a dangling credit.
type RewardMinter interface {
	Mint(db *gorm.DB, to string, amount *big.Int) error
}

// RewardService is the ledger-backed reward token mirror.
type RewardService struct {
	db *gorm.DB
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{db: db}
}

func (s *RewardService) Mint(db *gorm.DB, to string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("mint amount must be positive")
	}

	to = utils.NormalizeAddress(to)

	var account models.RewardAccount
	err := db.First(&account, "address = ?", to).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.RewardAccount{Address: to, Balance: models.NewBigInt(0)}
		if err := db.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create reward account: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	account.Balance.Add(&account.Balance.Int, amount)
	if err := db.Model(&models.RewardAccount{}).
		Where("address = ?", to).
		Update("balance", account.Balance).Error; err != nil {
		return fmt.Errorf("failed to credit reward account: %w", err)
	}
	return nil
}

func (s *RewardService) BalanceOf(address string) (*big.Int, error) {
	var account models.RewardAccount
	err := s.db.First(&account, "address = ?", utils.NormalizeAddress(address)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return new(big.Int).Set(&account.Balance.Int), nil
}
