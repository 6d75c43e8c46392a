package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/zoobzio/clockz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return service
}

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		TenantID: "tenant-a",
		Username: "testuser",
		Role:     models.RoleTechnician,
	}
}

func TestNewService(t *testing.T) {
	service, err := NewService("secret", 24*time.Hour)
	assert.NoError(t, err)
	assert.NotNil(t, service)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	_, err = NewService("", time.Hour)
	assert.Error(t, err)

	_, err = NewService("secret", 0)
	assert.Error(t, err)
}

func TestService_HashPassword(t *testing.T) {
	service := newTestService(t)

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidatePassword(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidatePassword("validpassword123"))

	err := service.ValidatePassword("short")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestService_ValidateToken(t *testing.T) {
	service := newTestService(t)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "tenant-a", claims.TenantID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
}

func TestService_GenerateToken_RequiresTenant(t *testing.T) {
	service := newTestService(t)
	user := testUser()
	user.TenantID = ""

	_, err := service.GenerateToken(user)
	assert.Error(t, err)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := newTestService(t).GenerateToken(testUser())
	require.NoError(t, err)

	other, err := NewService("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_MissingTenant(t *testing.T) {
	service := newTestService(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  issuer,
		"sub":  primitive.NewObjectID().Hex(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(service.jwtSecret)
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_TokenExpiration(t *testing.T) {
	clock := clockz.NewFakeClock()
	service := newTestService(t).WithClock(clock)

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour).Unix(), claims.Exp)

	clock.Advance(2 * time.Hour)
	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService(t)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc"} {
		_, err = service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, "header %q", header)
	}
}
