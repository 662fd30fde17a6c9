package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

func newTestAuth() *AuthService {
	return NewAuthService(nil, AuthConfig{Secret: "secret", Issuer: "sma-adp", Expiry: time.Hour})
}

func TestIssueAndValidateToken(t *testing.T) {
	auth := newTestAuth()

	token, expiresAt, err := auth.IssueToken("acc-1", models.RoleSiteAdmin, "admin@example.edu", "Ada Admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.UserID)
	assert.Equal(t, models.RoleSiteAdmin, claims.Role)
	assert.Equal(t, "Ada Admin", claims.FullName)
}

func TestValidateTokenRejectsForeignIssuerAndSecret(t *testing.T) {
	auth := newTestAuth()

	other := NewAuthService(nil, AuthConfig{Secret: "secret", Issuer: "someone-else"})
	token, _, err := other.IssueToken("acc-1", models.RoleSiteAdmin, "", "")
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	forged := NewAuthService(nil, AuthConfig{Secret: "guess", Issuer: "sma-adp"})
	token, _, err = forged.IssueToken("acc-1", models.RoleSiteAdmin, "", "")
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	auth := newTestAuth()
	claims := &models.JWTClaims{UserID: "acc-1", Role: models.RoleSiteAdmin, RegisteredClaims: jwt.RegisteredClaims{Issuer: "sma-adp"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestIssueTokenUnknownRole(t *testing.T) {
	_, _, err := newTestAuth().IssueToken("acc-1", models.Role("root"), "", "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
