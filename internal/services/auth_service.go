package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"storeratings/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthService issues and verifies session tokens. Tokens carry only the
// user id; the session middleware re-reads the user from the database.
type AuthService struct {
	secretKey []byte
	logger    zerolog.Logger
}

const (
	sessionTokenTTL  = 24 * time.Hour
	resetTokenTTL    = 15 * time.Minute
	resetTokenLength = 16 // bytes of entropy, hex-encoded to 32 chars
)

func NewAuthService(secret string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secretKey: []byte(secret),
		logger:    logger,
	}
}

func (s *AuthService) GenerateToken(userID int) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims := &middleware.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GenerateResetToken produces an opaque password-reset token from a
// cryptographically secure source, with its expiry time.
func (s *AuthService) GenerateResetToken() (string, time.Time, error) {
	buf := make([]byte, resetTokenLength)
	if _, err := rand.Read(buf); err != nil {
		s.logger.Error().Err(err).Msg("Error generating reset token")
		return "", time.Time{}, fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), time.Now().Add(resetTokenTTL), nil
}
