package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	userID := 123
	email := "a@x.com"

	token, err := GenerateToken(userID, email, 3600*time.Minute, testSecret)

	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)

	// Expiry is issued-at plus the configured TTL
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, 3600*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestValidateToken_ValidToken(t *testing.T) {
	userID := 456
	token, err := GenerateToken(userID, "b@x.com", 15*time.Minute, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)

	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateToken_InvalidSecret(t *testing.T) {
	token, err := GenerateToken(789, "c@x.com", 15*time.Minute, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "wrong-secret")

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	// Negative TTL produces an already-expired token
	token, err := GenerateToken(101, "d@x.com", -1*time.Hour, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)

	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_MalformedToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "Empty token",
			token: "",
		},
		{
			name:  "Random string",
			token: "not-a-valid-jwt-token",
		},
		{
			name:  "Incomplete JWT",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, testSecret)

			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	claims := Claims{
		UserID: 999,
		Email:  "e@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}

	// Unsigned token must be rejected by the HMAC method check
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parsed, err := ValidateToken(tokenString, testSecret)

	assert.Error(t, err)
	assert.Nil(t, parsed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(UserIDKey, 42)

	id, err := GetUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserIDFromContext(c)
	assert.Error(t, err)
}
