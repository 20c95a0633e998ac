package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListsLease(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)

	lease, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)
	assert.Equal(t, env.now, lease.ListedAt)
	assert.Equal(t, int64(0), lease.SignedAt)

	status, err := env.lease.Status(1)
	require.NoError(t, err)
	assert.Equal(t, "listed", status.State)

	leased, err := env.lease.IsTokenLeased(1)
	require.NoError(t, err)
	assert.True(t, leased)
}

func TestCreateRejections(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)

	_, err := env.lease.Create(bob, 1, 30, bigInt(1000), "")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = env.lease.Create(alice, 1, 0, bigInt(1000), "")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = env.lease.Create(alice, 1, 366, bigInt(1000), "")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = env.lease.Create(alice, 1, 30, bigInt(1000), alice)
	assert.ErrorIs(t, err, ErrInvalidLessee)

	_, err = env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)

	// A live listing blocks relisting.
	_, err = env.lease.Create(alice, 1, 30, bigInt(2000), "")
	assert.ErrorIs(t, err, ErrTokenIsStaked)
}

func TestSignSplitsPayment(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(bob, 1500)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)

	lease, err := env.lease.Sign(bob, 1, bigInt(1000))
	require.NoError(t, err)
	assert.Equal(t, env.now, lease.SignedAt)
	assert.Equal(t, bob, lease.Lessee)

	// 8000 bps to the owner, the remainder to the fee pool.
	assert.Equal(t, int64(800), env.currencyBalance(alice))
	assert.Equal(t, int64(500), env.currencyBalance(bob))

	state, err := env.admin.GetPlatformState()
	require.NoError(t, err)
	assert.Equal(t, bigInt(200), &state.FeePool.Int)

	status, err := env.lease.Status(1)
	require.NoError(t, err)
	assert.Equal(t, "active", status.State)
}

func TestSignRejections(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(alice, 5000)
	env.fund(bob, 5000)

	_, err := env.lease.Sign(bob, 1, bigInt(1000))
	assert.ErrorIs(t, err, ErrInvalidLease)

	_, err = env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)

	_, err = env.lease.Sign(bob, 1, bigInt(999))
	assert.ErrorIs(t, err, ErrIncorrectFundsAmount)

	// The owner cannot take their own lease.
	_, err = env.lease.Sign(alice, 1, bigInt(1000))
	assert.ErrorIs(t, err, ErrInvalidLessee)

	_, err = env.lease.Sign(bob, 1, bigInt(1000))
	require.NoError(t, err)

	_, err = env.lease.Sign(carol, 1, bigInt(1000))
	assert.ErrorIs(t, err, ErrLeaseAlreadySigned)
}

func TestSignInsufficientFundsLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(bob, 100)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)

	_, err = env.lease.Sign(bob, 1, bigInt(1000))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed payment rolled everything back.
	assert.Equal(t, int64(100), env.currencyBalance(bob))
	assert.Equal(t, int64(0), env.currencyBalance(alice))

	status, err := env.lease.Status(1)
	require.NoError(t, err)
	assert.Equal(t, "listed", status.State)
}

func TestNamedLesseeIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(bob, 2000)
	env.fund(carol, 2000)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), carol)
	require.NoError(t, err)

	_, err = env.lease.Sign(bob, 1, bigInt(1000))
	assert.ErrorIs(t, err, ErrInvalidLessee)

	_, err = env.lease.Sign(carol, 1, bigInt(1000))
	require.NoError(t, err)
}

func TestOneActiveLeasePerLessee(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.setOwner(2, bob)
	env.fund(carol, 5000)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)
	_, err = env.lease.Create(bob, 2, 30, bigInt(1000), "")
	require.NoError(t, err)

	_, err = env.lease.Sign(carol, 1, bigInt(1000))
	require.NoError(t, err)

	_, err = env.lease.Sign(carol, 2, bigInt(1000))
	assert.ErrorIs(t, err, ErrHasActiveLease)

	// Once the first lease runs out the lessee may sign again.
	env.advanceDays(31)
	_, err = env.lease.Sign(carol, 2, bigInt(1000))
	require.NoError(t, err)
}

func TestGiftAutoSigns(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)

	lease, err := env.lease.Create(alice, 1, 30, bigInt(0), bob)
	require.NoError(t, err)
	assert.Equal(t, env.now, lease.SignedAt)
	assert.Equal(t, bob, lease.Lessee)

	// No funds moved.
	assert.Equal(t, int64(0), env.currencyBalance(alice))
	assert.Equal(t, int64(0), env.currencyBalance(bob))

	status, err := env.lease.Status(1)
	require.NoError(t, err)
	assert.Equal(t, "active", status.State)
}

func TestSignedGiftStaysMutable(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)

	_, err := env.lease.Create(alice, 1, 30, bigInt(0), bob)
	require.NoError(t, err)

	// Redirect the gift; the old recipient is released.
	lease, err := env.lease.Update(alice, 1, 30, bigInt(0), carol)
	require.NoError(t, err)
	assert.Equal(t, carol, lease.Lessee)

	held, err := holderActive(env.db, bob, env.now, testDaySeconds)
	require.NoError(t, err)
	assert.False(t, held)

	// And a signed gift may still be cancelled outright.
	require.NoError(t, env.lease.Cancel(alice, 1))

	status, err := env.lease.Status(1)
	require.NoError(t, err)
	assert.Equal(t, "unlisted", status.State)
}

func TestSignedPaidLeaseIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(bob, 2000)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)
	_, err = env.lease.Sign(bob, 1, bigInt(1000))
	require.NoError(t, err)

	_, err = env.lease.Update(alice, 1, 60, bigInt(2000), "")
	assert.ErrorIs(t, err, ErrLeaseAlreadySigned)

	err = env.lease.Cancel(alice, 1)
	assert.ErrorIs(t, err, ErrLeaseAlreadySigned)
}

func TestExpiredLeaseCanBeReplaced(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(bob, 2000)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)
	_, err = env.lease.Sign(bob, 1, bigInt(1000))
	require.NoError(t, err)

	env.advanceDays(31)

	leased, err := env.lease.IsTokenLeased(1)
	require.NoError(t, err)
	assert.False(t, leased)

	status, err := env.lease.Status(1)
	require.NoError(t, err)
	assert.Equal(t, "expired", status.State)

	// The stale record gives way to a fresh listing.
	lease, err := env.lease.Create(alice, 1, 60, bigInt(500), "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), lease.SignedAt)
	assert.Equal(t, "", lease.Lessee)
}

func TestUpdateRewritesListingTerms(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)

	_, err := env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)

	lease, err := env.lease.Update(alice, 1, 60, bigInt(2000), carol)
	require.NoError(t, err)
	assert.Equal(t, int64(60), lease.DurationDays)
	assert.Equal(t, bigInt(2000), &lease.Price.Int)
	assert.Equal(t, carol, lease.Lessee)

	_, err = env.lease.Update(bob, 1, 60, bigInt(2000), "")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = env.lease.Update(alice, 99, 60, bigInt(2000), "")
	assert.ErrorIs(t, err, ErrInvalidLease)
}

func TestWithdrawFees(t *testing.T) {
	env := newTestEnv(t)
	env.setOwner(1, alice)
	env.fund(bob, 2000)

	_, err := env.lease.WithdrawFees(dave)
	assert.ErrorIs(t, err, ErrZeroWithdrawal)

	_, err = env.lease.Create(alice, 1, 30, bigInt(1000), "")
	require.NoError(t, err)
	_, err = env.lease.Sign(bob, 1, bigInt(1000))
	require.NoError(t, err)

	amount, err := env.lease.WithdrawFees(dave)
	require.NoError(t, err)
	assert.Equal(t, bigInt(200), amount)
	assert.Equal(t, int64(200), env.currencyBalance(dave))

	// The pool drains to zero.
	_, err = env.lease.WithdrawFees(dave)
	assert.ErrorIs(t, err, ErrZeroWithdrawal)
}
