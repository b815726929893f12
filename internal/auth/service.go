// Package auth gates the admin surface of the API. The household has a
// single admin account configured through the environment; a successful
// login returns a short-lived JWT that unlocks the mutating routes. The
// ledger engine itself knows nothing about sessions.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Service issues and verifies admin session tokens
type Service struct {
	username string
	password string // plaintext or bcrypt hash, per config
	secret   []byte
	ttl      time.Duration
}

// NewService creates a new auth service
func NewService(username, password, secret string, ttl time.Duration) *Service {
	return &Service{
		username: username,
		password: password,
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

// Login checks the admin credentials and returns a signed session token
// with its expiry.
func (s *Service) Login(username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	if !userOK || !s.passwordMatches(password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.MapClaims{
		"sub":  s.username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresAt, nil
}

// passwordMatches accepts either a bcrypt hash or a plaintext value in
// the configuration; plaintext keeps local setups simple.
func (s *Service) passwordMatches(password string) bool {
	if strings.HasPrefix(s.password, "$2a$") || strings.HasPrefix(s.password, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(s.password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

// Verify parses a session token and checks it carries the admin role.
func (s *Service) Verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "admin" {
		return ErrInvalidToken
	}

	return nil
}
