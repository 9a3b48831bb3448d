package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrBadToken       = errors.New("invalid or expired token")
)

// Manager issues and checks the admin bearer tokens used by the control
// plane endpoints and gmctl.
type Manager struct {
	secret    []byte
	ttl       time.Duration
	adminHash string
}

func NewManager(secret string, ttl time.Duration, adminHash string) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, adminHash: adminHash}
}

// Login checks the admin password against its bcrypt hash and mints a token.
func (m *Manager) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(m.adminHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a bearer token and confirms it is a live admin token.
func (m *Manager) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrBadToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != "admin" {
		return ErrBadToken
	}
	return nil
}
