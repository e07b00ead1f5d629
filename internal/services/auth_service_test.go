package services_test

import (
	"context"
	"testing"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreditOrderPoints(ctx context.Context, id string, points int64) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

func (m *MockUserRepository) DebitAvailablePoints(ctx context.Context, id string, points int64) (bool, error) {
	args := m.Called(ctx, id, points)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLevel(ctx context.Context, id, level string) error {
	args := m.Called(ctx, id, level)
	return args.Error(0)
}

func (m *MockUserRepository) SetLifetimePoints(ctx context.Context, id string, expected, points int64, level string) (bool, error) {
	args := m.Called(ctx, id, expected, points, level)
	return args.Bool(0), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func signed(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthService_TokenForUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	user := &models.User{ID: "user-123", Role: models.RoleSeller}
	mockRepo.On("GetByID", mock.Anything, "user-123").Return(user, nil).Once()

	token, err := authService.TokenForUser(context.Background(), "user-123")
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "SELLER", claims["role"])

	identity, err := authService.Identify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: "user-123", Role: models.RoleSeller}, identity)
}

func TestAuthService_TokenForUnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
	mockRepo.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NotFound("user", "ghost")).Once()

	_, err := authService.TokenForUser(context.Background(), "ghost")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Identify(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, 0)
	future := jwt.TimeFunc().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "invalid.token.string"},
		{"wrong secret", signed(t, jwt.MapClaims{"user_id": "u-1", "role": "CUSTOMER", "exp": future}, "other_secret")},
		{"expired", signed(t, jwt.MapClaims{"user_id": "u-1", "role": "CUSTOMER", "exp": jwt.TimeFunc().Add(-time.Hour).Unix()}, testJWTSecret)},
		{"unknown role", signed(t, jwt.MapClaims{"user_id": "u-1", "role": "ROOT", "exp": future}, testJWTSecret)},
		{"missing user", signed(t, jwt.MapClaims{"role": "CUSTOMER", "exp": future}, testJWTSecret)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Identify(tt.token)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
		})
	}

	identity, err := authService.Identify(signed(t, jwt.MapClaims{"user_id": "u-1", "role": "customer", "exp": future}, testJWTSecret))
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, identity.Role)
}
