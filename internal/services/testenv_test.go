package services

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/database"
)

const (
	testDaySeconds = 1000
	startEpoch     = 1_000_000

	alice = "0xaaaa000000000000000000000000000000000001"
	bob   = "0xbbbb000000000000000000000000000000000002"
	carol = "0xcccc000000000000000000000000000000000003"
	dave  = "0xdddd000000000000000000000000000000000004"
)

// testEnv wires every service against an in-memory database with a
// shortened day and a manually advanced clock.
type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	cfg *config.Config
	now int64

	collection *CollectionService
	reward     *RewardService
	staking    *StakingService
	rental     *RentalService
	lease      *LeaseService
	payment    *PaymentService
	admin      *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))

	cfg := &config.Config{
		Environment: "test",
		Staking: config.StakingConfig{
			SecondsPerDay:    testDaySeconds,
			CollectionSize:   10,
			DefaultDurations: []int64{7, 30, 90},
		},
		Leasing: config.LeasingConfig{
			EarningFractionBps:   8000,
			MaxLeaseDurationDays: 365,
		},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 1,
		},
	}
	require.NoError(t, database.SeedInitialData(db, cfg))

	env := &testEnv{t: t, db: db, cfg: cfg, now: startEpoch}

	clock := func() int64 { return env.now }

	env.collection = NewCollectionService(db)
	env.reward = NewRewardService(db)
	env.staking = NewStakingService(db, cfg, env.collection, env.reward)
	env.staking.Now = clock
	env.rental = NewRentalService(db, cfg, env.collection)
	env.rental.Now = clock
	env.lease = NewLeaseService(db, cfg, env.collection)
	env.lease.Now = clock
	env.payment = NewPaymentService(db, cfg)
	env.admin = NewAdminService(db, cfg)

	return env
}

func (e *testEnv) advanceDays(days int64) {
	e.now += days * testDaySeconds
}

func (e *testEnv) advanceSeconds(seconds int64) {
	e.now += seconds
}

// setOwner writes ownership into the collection mirror directly.
func (e *testEnv) setOwner(tokenID int64, owner string) {
	require.NoError(e.t, e.collection.SetOwner(tokenID, owner))
}

// setRate installs an emission rate for a rarity class and tags the
// given tokens with it.
func (e *testEnv) setRate(rarityClass int, tokensPerDay int64, tokenIDs ...int64) {
	require.NoError(e.t, e.admin.SetEmissionRate(rarityClass, tokensPerDay))
	if len(tokenIDs) > 0 {
		classes := make([]int, len(tokenIDs))
		for i := range classes {
			classes[i] = rarityClass
		}
		require.NoError(e.t, e.admin.SetRarities(tokenIDs, classes))
	}
}

// fund credits the internal currency ledger directly.
func (e *testEnv) fund(address string, amount int64) {
	require.NoError(e.t, creditCurrency(e.db, address, bigInt(amount)))
}

func (e *testEnv) currencyBalance(address string) int64 {
	balance, err := currencyBalance(e.db, address)
	require.NoError(e.t, err)
	return balance.Int64()
}

func (e *testEnv) rewardBalance(address string) *big.Int {
	balance, err := e.reward.BalanceOf(address)
	require.NoError(e.t, err)
	return balance
}

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}

// scaled converts whole reward tokens to the 1e18 fixed-point ledger
// representation.
func scaled(tokens int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(tokens), rewardScale)
}
