package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetEmissionRateUpserts(t *testing.T) {
	env := newTestEnv(t)

	// Class 0 is the seeded default; adjusting it twice must overwrite,
	// not collide on the primary key.
	require.NoError(t, env.admin.SetEmissionRate(0, 5))
	require.NoError(t, env.admin.SetEmissionRate(0, 10))
	require.NoError(t, env.admin.SetEmissionRate(3, 25))

	rates, err := env.admin.ListEmissionRates()
	require.NoError(t, err)

	byClass := make(map[int]int64, len(rates))
	for _, rate := range rates {
		byClass[rate.RarityClass] = rate.TokensPerDay
	}
	assert.Equal(t, int64(10), byClass[0])
	assert.Equal(t, int64(25), byClass[3])
}

func TestSetEmissionRateRejectsNegative(t *testing.T) {
	env := newTestEnv(t)

	err := env.admin.SetEmissionRate(1, -1)
	assert.ErrorIs(t, err, ErrZeroEmissionRate)
}
