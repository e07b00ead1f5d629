package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// AuthService issues and verifies the identity tokens attached to requests.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService. A non-positive ttl defaults to
// 24 hours.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
	}
}

// IssueToken signs a token carrying the user's id and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// TokenForUser loads the user and issues a token for it.
func (s *AuthService) TokenForUser(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user)
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Identify validates the token and returns the caller it names.
func (s *AuthService) Identify(tokenString string) (models.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Identity{}, apperrors.Wrap(apperrors.KindUnauthorized, err, "invalid token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return models.Identity{}, apperrors.Unauthorized("token has no user")
	}
	roleName, _ := claims["role"].(string)
	role, err := models.ParseRole(roleName)
	if err != nil {
		return models.Identity{}, apperrors.Wrap(apperrors.KindUnauthorized, err, "token has an invalid role")
	}
	return models.Identity{UserID: userID, Role: role}, nil
}
