package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL bounds how long an issued service token stays valid.
const DefaultTokenTTL = time.Hour

// ServiceClaims are the claims carried by a management-API token.
type ServiceClaims struct {
	Service string `json:"service"`
	Stage   string `json:"stage"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 service token for one service stage.
func SignToken(secret, service, stage string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &ServiceClaims{
		Service: service,
		Stage:   stage,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%s@%s", service, stage),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a service token.
func VerifyToken(tokenStr, secret string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ServiceClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*ServiceClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
