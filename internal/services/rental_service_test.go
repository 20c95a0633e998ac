package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatsal2312/TinyAstro/internal/models"
)

func stakeToken(t *testing.T, env *testEnv, owner string, tokenID int64) {
	t.Helper()
	env.setOwner(tokenID, owner)
	env.setRate(1, 5, tokenID)
	_, err := env.staking.Stake(owner, tokenID)
	require.NoError(t, err)
}

func TestRentGrantsPass(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)

	result, err := env.rental.Rent(alice, 1, bob, models.PassSlotFirst, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PassSlotFirst, result.Slot)
	assert.Equal(t, env.now+7*testDaySeconds, result.Expires)

	status, err := env.rental.Status(bob)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, int64(1), status.TokenID)
	assert.Equal(t, models.PassSlotFirst, status.Slot)

	// The pass lapses at its expiry.
	env.advanceDays(8)
	status, err = env.rental.Status(bob)
	require.NoError(t, err)
	assert.False(t, status.Active)
}

func TestRentRequiresAllowedDuration(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)

	_, err := env.rental.Rent(alice, 1, bob, models.PassSlotFirst, 5)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	// Durations are operator-adjustable.
	require.NoError(t, env.admin.AddRentalDuration(5))
	_, err = env.rental.Rent(alice, 1, bob, models.PassSlotFirst, 5)
	require.NoError(t, err)
}

func TestRentRejectsHolderRecipient(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)
	env.setOwner(2, bob)

	_, err := env.rental.Rent(alice, 1, bob, models.PassSlotFirst, 7)
	assert.ErrorIs(t, err, ErrRecipientIsHolder)
}

func TestRentOneActivePassPerRecipient(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)
	stakeToken(t, env, bob, 2)

	_, err := env.rental.Rent(alice, 1, carol, models.PassSlotFirst, 7)
	require.NoError(t, err)

	_, err = env.rental.Rent(bob, 2, carol, models.PassSlotFirst, 7)
	assert.ErrorIs(t, err, ErrRecipientHasActivePass)

	// After expiry the recipient may receive a new pass.
	env.advanceDays(8)
	_, err = env.rental.Rent(bob, 2, carol, models.PassSlotFirst, 7)
	require.NoError(t, err)
}

func TestFirstStakedTokenGrantsOnePass(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)
	stakeToken(t, env, alice, 2)

	// Token 1 was alice's first stake; its second slot never opens.
	_, err := env.rental.Rent(alice, 1, bob, models.PassSlotSecond, 7)
	assert.ErrorIs(t, err, ErrSecondPassUnavailable)

	// Token 2 was not, so both slots work.
	_, err = env.rental.Rent(alice, 2, bob, models.PassSlotFirst, 7)
	require.NoError(t, err)
	_, err = env.rental.Rent(alice, 2, carol, models.PassSlotSecond, 7)
	require.NoError(t, err)
}

func TestRentSlotOccupiedUntilExpiry(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)

	_, err := env.rental.Rent(alice, 1, bob, models.PassSlotFirst, 7)
	require.NoError(t, err)

	_, err = env.rental.Rent(alice, 1, carol, models.PassSlotFirst, 7)
	assert.ErrorIs(t, err, ErrSlotOccupied)

	// The slot reopens once the pass expires.
	env.advanceDays(8)
	_, err = env.rental.Rent(alice, 1, carol, models.PassSlotFirst, 7)
	require.NoError(t, err)
}

func TestRentRequiresStakedOwnedToken(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(1, 5, 1)
	stakeToken(t, env, bob, 2)

	_, err := env.rental.Rent(alice, 1, carol, models.PassSlotFirst, 7)
	assert.ErrorIs(t, err, ErrNotStaked)

	_, err = env.rental.Rent(alice, 2, carol, models.PassSlotFirst, 7)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestExpiredSlotDoesNotShadowActivePass(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)
	stakeToken(t, env, alice, 2)
	stakeToken(t, env, bob, 3)

	// Carol holds slot 1 on token 2 and lets it lapse.
	_, err := env.rental.Rent(alice, 2, carol, models.PassSlotFirst, 7)
	require.NoError(t, err)
	env.advanceDays(8)

	// A fresh grant lands in slot 2 of the same token; carol's name now
	// appears in both slots, one expired and one live.
	_, err = env.rental.Rent(alice, 2, carol, models.PassSlotSecond, 7)
	require.NoError(t, err)

	status, err := env.rental.Status(carol)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, models.PassSlotSecond, status.Slot)

	// The live slot must gate further grants.
	_, err = env.rental.Rent(bob, 3, carol, models.PassSlotFirst, 7)
	assert.ErrorIs(t, err, ErrRecipientHasActivePass)
}

func TestRecipientIndexTracksLatestGrant(t *testing.T) {
	env := newTestEnv(t)
	stakeToken(t, env, alice, 1)
	stakeToken(t, env, bob, 2)

	_, err := env.rental.Rent(alice, 1, carol, models.PassSlotFirst, 7)
	require.NoError(t, err)

	env.advanceDays(8)

	// A later grant on another token overwrites the pointer.
	_, err = env.rental.Rent(bob, 2, carol, models.PassSlotFirst, 30)
	require.NoError(t, err)

	status, err := env.rental.Status(carol)
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TokenID)
	assert.True(t, status.Active)
}
