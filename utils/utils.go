package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches passlib's bcrypt default used for the legacy hashes.
const bcryptCost = 12

// AccessClaims is the payload of the access token carried in the auth cookie.
type AccessClaims struct {
	CSRF string `json:"csrf"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens for one secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to every token this issuer signs.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// GenerateJWT creates a new access token for the given username.
func (ti *TokenIssuer) GenerateJWT(username string) (string, *AccessClaims, error) {
	now := ti.now()
	claims := &AccessClaims{
		CSRF: uuid.NewString(),
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(ti.secret)
	if err != nil {
		return "", nil, err
	}
	return signedToken, claims, nil
}

// ValidateJWT parses and validates a token string, returning its claims.
func (ti *TokenIssuer) ValidateJWT(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("token parsing error: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != "access" || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func ValidatePassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}
