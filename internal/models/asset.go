// internal/models/asset.go
package models

import "time"

// Asset mirrors one token of the fixed 100-piece collection. Ownership is
// synced from the NFT contract through the admin surface; the staking and
// leasing ledgers read ownership from here.
type Asset struct {
	TokenID     int64     `json:"token_id" gorm:"primaryKey;autoIncrement:false"`
	Owner       string    `json:"owner" gorm:"size:64;index;not null"`
	RarityClass int       `json:"rarity_class" gorm:"default:0"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmissionRate maps a rarity class to its daily reward emission in whole
// tokens per day. Rate changes are not retroactive: a staked token keeps
// the rate snapshotted at stake time.
type EmissionRate struct {
	RarityClass  int   `json:"rarity_class" gorm:"primaryKey;autoIncrement:false"`
	TokensPerDay int64 `json:"tokens_per_day" gorm:"not null"`
}

// RentalDuration is one allowed rental pass length in days.
type RentalDuration struct {
	Days int64 `json:"days" gorm:"primaryKey;autoIncrement:false"`
}

// CurrencyAccount is the internal money ledger. Lessees fund it through
// payment intents and spend it when signing a lease.
type CurrencyAccount struct {
	Address   string    `json:"address" gorm:"primaryKey;size:64"`
	Balance   BigInt    `json:"balance" gorm:"type:numeric(78,0)"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RewardAccount mirrors the reward token: mint credits land here.
type RewardAccount struct {
	Address   string    `json:"address" gorm:"primaryKey;size:64"`
	Balance   BigInt    `json:"balance" gorm:"type:numeric(78,0)"`
	UpdatedAt time.Time `json:"updated_at"`
}
