package devserver_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lakehouselib/lakehouse/devserver"
	"github.com/lakehouselib/lakehouse/devserver/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = users.User{ID: "u-1", Email: "user1@gmail.com", Password: "secret", Role: "admin"}

func TestTokens_IssueVerify(t *testing.T) {
	tokens := devserver.NewTokens("jwt-secret", time.Hour)

	access, refresh, err := tokens.Issue(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	id, err := tokens.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, devserver.Identity{UserID: "u-1", Email: "user1@gmail.com", Role: "admin"}, id)
	assert.Equal(t, "admin:user1@gmail.com", id.InsertedBy())

	_, err = tokens.Verify(refresh)
	assert.ErrorIs(t, err, devserver.ErrUnauthorized, "refresh tokens are not access tokens")
}

func TestTokens_VerifyRejects(t *testing.T) {
	tokens := devserver.NewTokens("jwt-secret", time.Hour)
	access, _, err := tokens.Issue(testUser)
	require.NoError(t, err)

	other := devserver.NewTokens("other-secret", time.Hour)
	forged, _, err := other.Issue(testUser)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1", "typ": "access"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: forged},
		{name: "alg none", token: none},
		{name: "truncated", token: access[:len(access)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			assert.ErrorIs(t, err, devserver.ErrUnauthorized)
		})
	}
}

func TestTokens_Expired(t *testing.T) {
	tokens := devserver.NewTokens("jwt-secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	devserver.SetTokensClock(tokens, func() time.Time { return issued })

	access, _, err := tokens.Issue(testUser)
	require.NoError(t, err)

	devserver.SetTokensClock(tokens, time.Now)
	_, err = tokens.Verify(access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}
