// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BigInt persists an arbitrary-precision integer as a decimal string.
// Reward amounts are scaled by 1e18 and overflow int64 after a few
// hundred token-days, so every amount column uses this type.
type BigInt struct {
	big.Int
}

func NewBigInt(v int64) BigInt {
	var b BigInt
	b.SetInt64(v)
	return b
}

func NewBigIntFromString(s string) (BigInt, error) {
	var b BigInt
	if _, ok := b.SetString(s, 10); !ok {
		return BigInt{}, fmt.Errorf("invalid integer amount: %q", s)
	}
	return b, nil
}

func (b BigInt) Value() (driver.Value, error) {
	return b.String(), nil
}

func (b *BigInt) Scan(value interface{}) error {
	if value == nil {
		b.SetInt64(0)
		return nil
	}

	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	case int64:
		b.SetInt64(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BigInt", value)
	}

	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("cannot scan %q into BigInt", s)
	}
	return nil
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Accept bare numbers as well as quoted decimal strings.
		s = string(data)
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid integer amount: %s", data)
	}
	return nil
}

// JSONB type for PostgreSQL (stored as serialized JSON on SQLite)
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Int64List is a JSON-backed list of token ids. The staked-token list is
// order-sensitive at index 0 only (first-asset lock), so it is stored
// inline on the staker record rather than reconstructed from a query.
type Int64List []int64

func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]int64{})
	}
	return json.Marshal([]int64(l))
}

func (l *Int64List) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return nil
}

// SwapRemove removes the first occurrence of id by moving the last element
// into its place. Order beyond index 0 is not meaningful.
func (l Int64List) SwapRemove(id int64) (Int64List, bool) {
	for i, v := range l {
		if v == id {
			l[i] = l[len(l)-1]
			return l[:len(l)-1], true
		}
	}
	return l, false
}

func (l Int64List) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Enums
type Role string

const (
	RoleWallet Role = "wallet"
	RoleAdmin  Role = "admin"
)

type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "deposit"
	TransactionTypeLeasePayment  TransactionType = "lease_payment"
	TransactionTypeFeeWithdrawal TransactionType = "fee_withdrawal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

type EventType string

const (
	EventTokenStaked    EventType = "token_staked"
	EventTokenUnstaked  EventType = "token_unstaked"
	EventRewardsClaimed EventType = "rewards_claimed"
	EventTokenRented    EventType = "token_rented"
	EventLeaseCreated   EventType = "lease_created"
	EventLeaseUpdated   EventType = "lease_updated"
	EventLeaseCancelled EventType = "lease_cancelled"
	EventLeaseSigned    EventType = "lease_signed"
	EventFeesWithdrawn  EventType = "fees_withdrawn"
)

// PassSlot identifies one of the two rental pass slots on a staked token.
type PassSlot int

const (
	PassSlotFirst  PassSlot = 1
	PassSlotSecond PassSlot = 2
)
