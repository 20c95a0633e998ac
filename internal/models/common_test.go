package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64ListSwapRemove(t *testing.T) {
	l := Int64List{1, 2, 3, 4}

	// Removing a middle element pulls the tail into its slot; index 0 is
	// untouched.
	l, ok := l.SwapRemove(2)
	require.True(t, ok)
	assert.Equal(t, Int64List{1, 4, 3}, l)

	l, ok = l.SwapRemove(1)
	require.True(t, ok)
	assert.Equal(t, Int64List{3, 4}, l)

	l, ok = l.SwapRemove(99)
	assert.False(t, ok)
	assert.Len(t, l, 2)

	l, _ = l.SwapRemove(3)
	l, _ = l.SwapRemove(4)
	assert.Empty(t, l)
}

func TestLeaseStateDerivation(t *testing.T) {
	const day = int64(1000)

	var lease Lease
	assert.False(t, lease.IsListed())
	assert.False(t, lease.Gates(0, day))

	lease = Lease{ListedAt: 100, DurationDays: 10}
	assert.True(t, lease.IsListed())
	assert.True(t, lease.Gates(5000, day))

	lease.SignedAt = 5000
	assert.False(t, lease.IsListed())
	assert.True(t, lease.IsActive(5000+10*day-1, day))
	assert.False(t, lease.IsActive(5000+10*day, day))
	assert.False(t, lease.Gates(5000+10*day, day))
}

func TestLeaseUpdatableAndGift(t *testing.T) {
	lease := Lease{ListedAt: 100}
	assert.True(t, lease.Updatable())
	assert.False(t, lease.IsGift())

	lease.Lessee = "0xabc"
	assert.True(t, lease.IsGift())

	// A signed gift stays mutable; a signed paid lease does not.
	lease.SignedAt = 200
	assert.True(t, lease.Updatable())

	lease.Price = NewBigInt(100)
	assert.False(t, lease.Updatable())
	assert.False(t, lease.IsGift())
}

func TestStakedAssetPassSlots(t *testing.T) {
	record := StakedAsset{TokenID: 1}
	assert.False(t, record.HasActivePass(1))

	record.SetSlot(PassSlotFirst, "0xaaa", 500)
	record.SetSlot(PassSlotSecond, "0xbbb", 900)

	slot, expires, ok := record.PassFor("0xaaa")
	require.True(t, ok)
	assert.Equal(t, PassSlotFirst, slot)
	assert.Equal(t, int64(500), expires)

	_, _, ok = record.PassFor("0xccc")
	assert.False(t, ok)

	assert.Equal(t, int64(900), record.SlotExpiry(PassSlotSecond))
	assert.True(t, record.HasActivePass(900))
	assert.False(t, record.HasActivePass(901))
}

func TestPassForPrefersLaterExpiry(t *testing.T) {
	record := StakedAsset{TokenID: 1}
	record.SetSlot(PassSlotFirst, "0xaaa", 500)
	record.SetSlot(PassSlotSecond, "0xaaa", 900)

	// Both slots name the same recipient; the stale one must not win.
	slot, expires, ok := record.PassFor("0xaaa")
	require.True(t, ok)
	assert.Equal(t, PassSlotSecond, slot)
	assert.Equal(t, int64(900), expires)

	record.SetSlot(PassSlotFirst, "0xaaa", 1200)
	slot, expires, ok = record.PassFor("0xaaa")
	require.True(t, ok)
	assert.Equal(t, PassSlotFirst, slot)
	assert.Equal(t, int64(1200), expires)
}
