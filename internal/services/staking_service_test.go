package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatsal2312/TinyAstro/internal/models"
)

func TestStakeSnapshotsEmissionRate(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(1, 5, 1)

	result, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.TokenID)
	assert.True(t, result.FirstStaked)
	assert.Equal(t, scaled(5), &result.EmissionRate.Int)

	// A later rate change does not touch the snapshot.
	require.NoError(t, env.admin.SetEmissionRate(1, 50))

	status, err := env.staking.Status(alice)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, status.StakedTokenIDs)
	assert.Equal(t, scaled(5), &status.DailyYield.Int)
}

func TestStakeRejections(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setOwner(2, bob)
	env.setRate(1, 5, 1, 2)

	_, err := env.staking.Stake(alice, 2)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = env.staking.Stake(alice, 99)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	// Token 3 keeps rarity class 0 which has no emission rate.
	env.setOwner(3, alice)
	_, err = env.staking.Stake(alice, 3)
	assert.ErrorIs(t, err, ErrZeroEmissionRate)

	_, err = env.staking.Stake(alice, 1)
	require.NoError(t, err)
	_, err = env.staking.Stake(alice, 1)
	assert.ErrorIs(t, err, ErrAlreadyStaked)
}

func TestStakingPauseBlocksMutations(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(1, 5, 1)

	require.NoError(t, env.admin.SetStakingPaused(true))

	_, err := env.staking.Stake(alice, 1)
	assert.ErrorIs(t, err, ErrStakingPaused)
	_, err = env.staking.Unstake(alice, []int64{1})
	assert.ErrorIs(t, err, ErrStakingPaused)
	_, err = env.staking.Claim(alice)
	assert.ErrorIs(t, err, ErrStakingPaused)

	require.NoError(t, env.admin.SetStakingPaused(false))
	_, err = env.staking.Stake(alice, 1)
	require.NoError(t, err)
}

func TestImmediateUnstakeMintsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(1, 5, 1)

	_, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)

	// Less than one full day elapsed.
	env.advanceSeconds(testDaySeconds - 1)

	result, err := env.staking.Unstake(alice, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Reward.Sign())
	assert.Equal(t, 0, env.rewardBalance(alice).Sign())
}

func TestClaimIsDayExactAndCarriesRemainder(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(2, 15, 1)

	_, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)
	stakedAt := env.now

	// Ten full days plus part of an eleventh.
	env.advanceDays(10)
	env.advanceSeconds(testDaySeconds / 2)

	result, err := env.staking.Claim(alice)
	require.NoError(t, err)
	assert.Equal(t, scaled(150), &result.Reward.Int)
	assert.Equal(t, scaled(150), env.rewardBalance(alice))

	// The checkpoint advanced exactly ten days, keeping the half day.
	var record models.StakedAsset
	require.NoError(t, env.db.First(&record, "token_id = ?", 1).Error)
	assert.Equal(t, stakedAt+10*testDaySeconds, record.StakedAt)

	// Claiming again within the same day yields nothing.
	_, err = env.staking.Claim(alice)
	assert.ErrorIs(t, err, ErrZeroAccrual)

	// The carried half day completes a full day half a day later.
	env.advanceSeconds(testDaySeconds / 2)
	result, err = env.staking.Claim(alice)
	require.NoError(t, err)
	assert.Equal(t, scaled(15), &result.Reward.Int)
}

func TestClaimAccruesAcrossMultipleTokens(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setOwner(2, alice)
	env.setRate(1, 5, 1)
	env.setRate(2, 15, 2)

	_, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)
	_, err = env.staking.Stake(alice, 2)
	require.NoError(t, err)

	env.advanceDays(3)

	result, err := env.staking.Claim(alice)
	require.NoError(t, err)
	assert.Equal(t, scaled(3*5+3*15), &result.Reward.Int)

	status, err := env.staking.Status(alice)
	require.NoError(t, err)
	assert.Equal(t, scaled(60), &status.LifetimeMinted.Int)
	assert.Equal(t, 0, status.Claimable.Sign())
}

func TestClaimIgnoresClockRegression(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setOwner(2, alice)
	env.setRate(1, 5, 1, 2)

	_, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)

	env.advanceDays(3)
	_, err = env.staking.Stake(alice, 2)
	require.NoError(t, err)
	secondStakedAt := env.now

	// Clock slips to before the second stake. Token 1 still has two whole
	// days accrued; token 2 must contribute nothing and keep its checkpoint.
	env.now -= testDaySeconds

	result, err := env.staking.Claim(alice)
	require.NoError(t, err)
	assert.Equal(t, scaled(2*5), &result.Reward.Int)

	var record models.StakedAsset
	require.NoError(t, env.db.First(&record, "token_id = ?", 2).Error)
	assert.Equal(t, secondStakedAt, record.StakedAt)
}

func TestUnstakeMintsAccruedRewards(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(1, 5, 1)

	_, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)

	env.advanceDays(4)

	result, err := env.staking.Unstake(alice, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, scaled(20), &result.Reward.Int)
	assert.Equal(t, scaled(20), env.rewardBalance(alice))

	staked, err := env.staking.IsTokenStaked(1)
	require.NoError(t, err)
	assert.False(t, staked)

	status, err := env.staking.Status(alice)
	require.NoError(t, err)
	assert.Empty(t, status.StakedTokenIDs)
	assert.Equal(t, scaled(20), &status.LifetimeMinted.Int)
}

func TestUnstakeRejections(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setOwner(2, bob)
	env.setRate(1, 5, 1, 2)

	_, err := env.staking.Unstake(alice, []int64{})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = env.staking.Unstake(alice, []int64{1})
	assert.ErrorIs(t, err, ErrNoStakedAssets)

	_, err = env.staking.Stake(alice, 1)
	require.NoError(t, err)
	_, err = env.staking.Stake(bob, 2)
	require.NoError(t, err)

	_, err = env.staking.Unstake(alice, []int64{2})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = env.staking.Unstake(alice, []int64{3})
	assert.ErrorIs(t, err, ErrNotStaked)
}

func TestPartialUnstakeKeepsFirstStakedAtHead(t *testing.T) {
	env := newTestEnv(t)
	for id := int64(1); id <= 3; id++ {
		env.setOwner(id, alice)
	}
	env.setRate(1, 5, 1, 2, 3)

	for id := int64(1); id <= 3; id++ {
		_, err := env.staking.Stake(alice, id)
		require.NoError(t, err)
	}

	// Removing the first-staked token while others remain would strand
	// it out of position.
	_, err := env.staking.Unstake(alice, []int64{1})
	assert.ErrorIs(t, err, ErrFirstAssetLocked)

	// Removing a later token is fine; swap-and-pop leaves token 1 at the
	// head.
	_, err = env.staking.Unstake(alice, []int64{2})
	require.NoError(t, err)

	status, err := env.staking.Status(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.StakedTokenIDs[0])

	// A full batch may include the first-staked token.
	_, err = env.staking.Unstake(alice, []int64{1, 3})
	require.NoError(t, err)
}

func TestUnstakeBlockedWhilePassActive(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setRate(1, 5, 1)

	_, err := env.staking.Stake(alice, 1)
	require.NoError(t, err)

	_, err = env.rental.Rent(alice, 1, bob, models.PassSlotFirst, 7)
	require.NoError(t, err)

	_, err = env.staking.Unstake(alice, []int64{1})
	assert.ErrorIs(t, err, ErrActiveRentalPass)

	// Unstaking works once the pass runs out.
	env.advanceDays(8)
	_, err = env.staking.Unstake(alice, []int64{1})
	require.NoError(t, err)
}
