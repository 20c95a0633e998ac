package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatsal2312/TinyAstro/internal/utils"
)

func TestOperatorLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.db, env.cfg)

	require.NoError(t, auth.EnsureOperator("admin", "s3cret"))

	// Already bootstrapped; a second call is a no-op.
	require.NoError(t, auth.EnsureOperator("other", "pw"))

	_, err := auth.Login(&OperatorLoginRequest{Username: "other", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(&OperatorLoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := auth.Login(&OperatorLoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Role)

	claims, err := utils.ValidateJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin", claims.Username)
}

func TestWalletTokenCarriesNormalizedAddress(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.db, env.cfg)

	resp, err := auth.IssueWalletToken(&WalletTokenRequest{
		Address: "0xAAAA000000000000000000000000000000000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "wallet", resp.Role)

	claims, err := utils.ValidateJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.Address)
	assert.Equal(t, "wallet", claims.Role)
}
