// internal/models/lease.go
package models

import "time"

// Lease is the per-token listing record. Absence of a record means the
// token is unlisted. ListedAt > 0 with SignedAt == 0 is an open listing;
// SignedAt > 0 is a signed lease, active until SignedAt + DurationDays
// worth of seconds. An expired record stays in place but reads inert and
// may be replaced by a new listing.
type Lease struct {
	TokenID      int64  `json:"token_id" gorm:"primaryKey;autoIncrement:false"`
	Owner        string `json:"owner" gorm:"size:64;index;not null"`
	Price        BigInt `json:"price" gorm:"type:numeric(78,0)"`
	Lessee       string `json:"lessee" gorm:"size:64;default:''"`
	ListedAt     int64  `json:"listed_at" gorm:"default:0"`
	DurationDays int64  `json:"duration_days" gorm:"not null"`
	SignedAt     int64  `json:"signed_at" gorm:"default:0"`
}

func (l *Lease) IsListed() bool {
	return l.ListedAt > 0 && l.SignedAt == 0
}

func (l *Lease) IsSigned() bool {
	return l.SignedAt > 0
}

// IsActive reports whether a signed lease is still running at now given
// the configured day length.
func (l *Lease) IsActive(now, secondsPerDay int64) bool {
	return l.SignedAt > 0 && now < l.SignedAt+l.DurationDays*secondsPerDay
}

// Gates reports whether the record blocks token mobility: listed, or
// signed and still active.
func (l *Lease) Gates(now, secondsPerDay int64) bool {
	return l.IsListed() || l.IsActive(now, secondsPerDay)
}

// Updatable reports whether the owner may still update or cancel: an
// unsigned listing, or a signed gift (price zero, lessee paid nothing).
func (l *Lease) Updatable() bool {
	return l.SignedAt == 0 || l.Price.Sign() == 0
}

// IsGift reports a zero-price listing naming a specific lessee; gifts are
// auto-signed on create/update to save the recipient a second call.
func (l *Lease) IsGift() bool {
	return l.Price.Sign() == 0 && l.Lessee != ""
}

// LeaseHolder is the reverse lessee index: at most one signed lease per
// lessee at a time.
type LeaseHolder struct {
	Address string `json:"address" gorm:"primaryKey;size:64"`
	TokenID int64  `json:"token_id" gorm:"not null"`
}

// PlatformState is a singleton row of operator-adjustable marketplace
// configuration plus the accumulated platform fee pool.
type PlatformState struct {
	ID                   int    `json:"-" gorm:"primaryKey;autoIncrement:false"`
	EarningFractionBps   int64  `json:"earning_fraction_bps" gorm:"default:8000"`
	MaxLeaseDurationDays int64  `json:"max_lease_duration_days" gorm:"default:365"`
	StakingPaused        bool   `json:"staking_paused" gorm:"default:false"`
	FeePool              BigInt `json:"fee_pool" gorm:"type:numeric(78,0)"`
}

// Transaction records every monetary movement on the currency ledger.
type Transaction struct {
	BaseModel
	TransactionType  TransactionType   `json:"transaction_type" gorm:"type:varchar(20);not null;index"`
	Payer            string            `json:"payer" gorm:"size:64;index"`
	Payee            string            `json:"payee" gorm:"size:64;index"`
	TokenID          *int64            `json:"token_id,omitempty" gorm:"index"`
	Amount           BigInt            `json:"amount" gorm:"type:numeric(78,0)"`
	PlatformFee      BigInt            `json:"platform_fee" gorm:"type:numeric(78,0)"`
	PaymentReference string            `json:"payment_reference" gorm:"size:255"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedAt      *time.Time        `json:"processed_at"`
}

// LedgerEvent is the persisted event stream: one row per state mutation,
// written in the same transaction as the mutation itself.
type LedgerEvent struct {
	BaseModel
	EventType EventType `json:"event_type" gorm:"type:varchar(30);not null;index"`
	TokenID   *int64    `json:"token_id,omitempty" gorm:"index"`
	Actor     string    `json:"actor" gorm:"size:64;index"`
	Data      JSONB     `json:"data" gorm:"type:jsonb"`
}
