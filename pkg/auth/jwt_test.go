package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-shop/config"
)

func TestIssueAndValidate(t *testing.T) {
	config.Set("JWT_SECRET", "jwt-test")

	tok, err := GenerateToken(5, []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)
	assert.True(t, claims.HasRole("ROLE_ADMIN"))
	assert.False(t, claims.HasRole("ROLE_USER"))
}

func TestRejectsExpiredAndForeignSignatures(t *testing.T) {
	config.Set("JWT_SECRET", "jwt-test")

	prev := TokenTTL
	TokenTTL = -time.Minute
	expired, err := GenerateToken(5, nil)
	TokenTTL = prev
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 5})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "s3cret!"))
	assert.False(t, CheckPassword(h, "wrong"))
}
