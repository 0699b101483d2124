package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"registrationdesk/internal/domain"
)

var errInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWTSessions issues and verifies HS256 session tokens.
type JWTSessions struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

var (
	_ domain.TokenIssuer   = (*JWTSessions)(nil)
	_ domain.TokenVerifier = (*JWTSessions)(nil)
)

// NewJWTSessions returns a token issuer/verifier signing with secret. Tokens expire after expiry.
func NewJWTSessions(secret string, expiry time.Duration) *JWTSessions {
	return &JWTSessions{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (s *JWTSessions) Issue(userID, email string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTSessions) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}
