// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/database"
	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// PaymentService funds the internal currency ledger. Deposits go through
// Stripe: a payment intent is created first, and the matching account is
// credited only once the intent reports succeeded.
type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type CreateDepositRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

type DepositIntentResponse struct {
	ClientSecret  string `json:"client_secret"`
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type ConfirmDepositRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	TransactionID   string `json:"transaction_id" validate:"required,uuid"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: cfg,
	}
}

// CreateDeposit opens a Stripe payment intent and records a pending
// deposit transaction for the caller's account.
func (s *PaymentService) CreateDeposit(address string, req *CreateDepositRequest) (*DepositIntentResponse, error) {
	address = utils.NormalizeAddress(address)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("address", address)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	txn := models.Transaction{
		TransactionType:  models.TransactionTypeDeposit,
		Payee:            address,
		PaymentReference: pi.ID,
		Status:           models.TransactionStatusPending,
	}
	txn.Amount.SetInt64(req.Amount)

	if err := s.db.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	return &DepositIntentResponse{
		ClientSecret:  pi.ClientSecret,
		PaymentID:     pi.ID,
		TransactionID: txn.ID.String(),
		Status:        string(pi.Status),
	}, nil
}

// ConfirmDeposit re-checks the intent with Stripe and, on success,
// credits the account and completes the transaction. Safe to call more
// than once; only the pending-to-completed edge moves funds.
func (s *PaymentService) ConfirmDeposit(req *ConfirmDepositRequest) (*models.Transaction, error) {
	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	var result *models.Transaction
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.First(&txn, "id = ? AND payment_reference = ?", req.TransactionID, pi.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		if txn.Status != models.TransactionStatusPending {
			result = &txn
			return nil
		}

		switch pi.Status {
		case stripe.PaymentIntentStatusSucceeded:
			now := time.Now()
			txn.Status = models.TransactionStatusCompleted
			txn.ProcessedAt = &now
			if err := creditCurrency(tx, txn.Payee, &txn.Amount.Int); err != nil {
				return err
			}
		case stripe.PaymentIntentStatusRequiresAction,
			stripe.PaymentIntentStatusRequiresConfirmation,
			stripe.PaymentIntentStatusRequiresPaymentMethod,
			stripe.PaymentIntentStatusProcessing:
			// Still settling; leave pending.
		default:
			txn.Status = models.TransactionStatusFailed
		}

		if err := tx.Save(&txn).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		result = &txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Credit adds funds to an account directly, bypassing Stripe. Exposed on
// the admin surface and used by tests to seed balances.
func (s *PaymentService) Credit(address string, amount *big.Int) error {
	address = utils.NormalizeAddress(address)
	if amount == nil || amount.Sign() <= 0 {
		return ErrIncorrectFundsAmount
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := creditCurrency(tx, address, amount); err != nil {
			return err
		}

		now := time.Now()
		txn := models.Transaction{
			TransactionType: models.TransactionTypeDeposit,
			Payee:           address,
			Status:          models.TransactionStatusCompleted,
			ProcessedAt:     &now,
		}
		txn.Amount.Set(amount)
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("failed to record deposit: %w", err)
		}
		return nil
	})
}

// Balance returns the account's spendable currency balance.
func (s *PaymentService) Balance(address string) (*big.Int, error) {
	return currencyBalance(s.db, utils.NormalizeAddress(address))
}

// History lists the transactions the address appears on, newest first by
// default.
func (s *PaymentService) History(address string, params utils.PaginationParams) ([]models.Transaction, int64, error) {
	address = utils.NormalizeAddress(address)

	query := s.db.Model(&models.Transaction{}).
		Where("payer = ? OR payee = ?", address, address)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}
