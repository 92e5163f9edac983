package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateSessionToken(t *testing.T) {
	token, claims, err := GenerateSessionToken(7, "Alice", "VERIFIER", testSecret, 7*24*time.Hour)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, claims.TokenID())
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.Expiry(), 5*time.Second)

	parsed, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.UserID)
	assert.Equal(t, "VERIFIER", parsed.Role)
	assert.Equal(t, "Alice", parsed.Name)
	assert.Equal(t, claims.TokenID(), parsed.TokenID())
}

func TestGenerateSessionToken_UniqueTokenIDs(t *testing.T) {
	_, first, err := GenerateSessionToken(1, "", "USER", testSecret, time.Hour)
	require.NoError(t, err)
	_, second, err := GenerateSessionToken(1, "", "USER", testSecret, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first.TokenID(), second.TokenID())
}

func TestValidateSessionToken_Expired(t *testing.T) {
	token, _, err := GenerateSessionToken(1, "", "USER", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateSessionToken(1, "", "USER", "secret1", time.Hour)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, "secret2")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateSessionToken_TamperedPayload(t *testing.T) {
	token, _, err := GenerateSessionToken(1, "", "USER", testSecret, time.Hour)
	require.NoError(t, err)

	userToken := strings.Split(token, ".")
	adminToken, _, err := GenerateSessionToken(1, "", "ADMIN", "other-secret", time.Hour)
	require.NoError(t, err)

	// Splice an ADMIN payload onto the USER signature.
	forged := userToken[0] + "." + strings.Split(adminToken, ".")[1] + "." + userToken[2]

	_, err = ValidateSessionToken(forged, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateSessionToken_Malformed(t *testing.T) {
	_, err := ValidateSessionToken("invalid.token.string", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateSessionToken("", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateSessionToken_InvalidSigningMethod(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    Issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateSessionToken_ForeignIssuer(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		Role:   "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
