// internal/services/currency.go
package services

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// Internal money ledger. Lease payments and fee withdrawals move balances
// here; deposits arrive through the payment service.

// lockForUpdate row-locks the next read so concurrent transactions cannot
// lose a balance update. SQLite has no FOR UPDATE; its writers serialize.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func creditCurrency(db *gorm.DB, address string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	address = utils.NormalizeAddress(address)

	var account models.CurrencyAccount
	err := lockForUpdate(db).First(&account, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.CurrencyAccount{Address: address, Balance: models.NewBigInt(0)}
		if err := db.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create currency account: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	account.Balance.Add(&account.Balance.Int, amount)
	if err := db.Model(&models.CurrencyAccount{}).
		Where("address = ?", address).
		Update("balance", account.Balance).Error; err != nil {
		return fmt.Errorf("failed to credit currency account: %w", err)
	}
	return nil
}

func debitCurrency(db *gorm.DB, address string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}
	address = utils.NormalizeAddress(address)

	var account models.CurrencyAccount
	err := lockForUpdate(db).First(&account, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientFunds
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	account.Balance.Sub(&account.Balance.Int, amount)
	if err := db.Model(&models.CurrencyAccount{}).
		Where("address = ?", address).
		Update("balance", account.Balance).Error; err != nil {
		return fmt.Errorf("failed to debit currency account: %w", err)
	}
	return nil
}

func currencyBalance(db *gorm.DB, address string) (*big.Int, error) {
	var account models.CurrencyAccount
	err := db.First(&account, "address = ?", utils.NormalizeAddress(address)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return new(big.Int).Set(&account.Balance.Int), nil
}
