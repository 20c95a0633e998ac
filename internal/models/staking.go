// internal/models/staking.go
package models

// StakedAsset exists only while a token is staked. EmissionRate is the
// stake-time snapshot scaled by 1e18; StakedAt is the accrual checkpoint
// and is advanced by whole days on claim so sub-day remainders carry over.
type StakedAsset struct {
	TokenID      int64  `json:"token_id" gorm:"primaryKey;autoIncrement:false"`
	Owner        string `json:"owner" gorm:"size:64;index;not null"`
	StakedAt     int64  `json:"staked_at" gorm:"not null"`
	EmissionRate BigInt `json:"emission_rate" gorm:"type:numeric(78,0)"`
	FirstStaked  bool   `json:"first_staked" gorm:"default:false"`

	// Two fixed pass slots. The first-staked token only ever grants one;
	// the cardinality is part of the rules, not an optimization.
	Pass1Recipient string `json:"pass1_recipient" gorm:"size:64;default:''"`
	Pass1Expires   int64  `json:"pass1_expires" gorm:"default:0"`
	Pass2Recipient string `json:"pass2_recipient" gorm:"size:64;default:''"`
	Pass2Expires   int64  `json:"pass2_expires" gorm:"default:0"`
}

// PassFor returns the slot currently naming recipient, if any. When both
// slots name the recipient the later-expiring one wins, so a stale grant
// never shadows a live one.
func (s *StakedAsset) PassFor(recipient string) (PassSlot, int64, bool) {
	if recipient == "" {
		return 0, 0, false
	}
	slot, expires, found := PassSlot(0), int64(0), false
	if s.Pass1Recipient == recipient {
		slot, expires, found = PassSlotFirst, s.Pass1Expires, true
	}
	if s.Pass2Recipient == recipient && (!found || s.Pass2Expires > expires) {
		slot, expires, found = PassSlotSecond, s.Pass2Expires, true
	}
	return slot, expires, found
}

// SlotExpiry returns the expiration of the given slot.
func (s *StakedAsset) SlotExpiry(slot PassSlot) int64 {
	if slot == PassSlotSecond {
		return s.Pass2Expires
	}
	return s.Pass1Expires
}

// SetSlot writes recipient and expiry into the given slot.
func (s *StakedAsset) SetSlot(slot PassSlot, recipient string, expires int64) {
	if slot == PassSlotSecond {
		s.Pass2Recipient = recipient
		s.Pass2Expires = expires
		return
	}
	s.Pass1Recipient = recipient
	s.Pass1Expires = expires
}

// HasActivePass reports whether either slot is still unexpired at now.
func (s *StakedAsset) HasActivePass(now int64) bool {
	return s.Pass1Expires >= now || s.Pass2Expires >= now
}

// StakerRecord tracks one owner's staking activity. StakedTokenIDs is
// maintained with swap-and-pop removal; the element at index 0 matters for
// the first-asset lock on partial unstakes.
type StakerRecord struct {
	Address        string    `json:"address" gorm:"primaryKey;size:64"`
	StakedTokenIDs Int64List `json:"staked_token_ids" gorm:"type:jsonb"`
	LifetimeMinted BigInt    `json:"lifetime_minted" gorm:"type:numeric(78,0)"`
}

// PassRecipient is the reverse recipient index. It points at the most
// recent grant only: a later grant on another token overwrites the pointer,
// and validity checks resolve the slot naming the recipient on that token.
type PassRecipient struct {
	Address string `json:"address" gorm:"primaryKey;size:64"`
	TokenID int64  `json:"token_id" gorm:"not null"`
}
