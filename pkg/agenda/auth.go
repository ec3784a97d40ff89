package agenda

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Session durations mirror the two persistence choices on the login form:
// a remembered session survives for a month, a plain one for a workday
// plus margin.
const (
	rememberedSessionTTL = 30 * 24 * time.Hour
	standardSessionTTL   = 12 * time.Hour
)

// ErrInvalidCredentials is returned when the email or password does not
// match the configured admin credential.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator issues and verifies admin session tokens. There is a
// single admin credential; tokens are HS256 JWTs whose lifetime depends on
// the remember flag. Signed-out tokens are held in an in-memory revocation
// set until they would have expired anyway.
type Authenticator struct {
	secret     []byte
	adminEmail string
	adminHash  string

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewAuthenticator builds an Authenticator. adminHash must be a bcrypt
// hash of the admin password, never the plaintext.
func NewAuthenticator(secret, adminEmail, adminHash string) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		adminEmail: adminEmail,
		adminHash:  adminHash,
		revoked:    make(map[string]time.Time),
	}
}

// HashPassword hashes a plaintext password for storage in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignIn verifies the credential and issues a token. The expiry depends on
// remember: 30 days when set, 12 hours otherwise.
func (a *Authenticator) SignIn(email, password string, remember bool) (string, time.Time, error) {
	if email != a.adminEmail {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.adminHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	ttl := standardSessionTTL
	if remember {
		ttl = rememberedSessionTTL
	}
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates a token and returns the authenticated email.
func (a *Authenticator) Verify(token string) (string, error) {
	a.mu.Lock()
	_, isRevoked := a.revoked[token]
	a.pruneLocked()
	a.mu.Unlock()
	if isRevoked {
		return "", ErrInvalidCredentials
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// Revoke invalidates a token for the remainder of its lifetime. Tokens
// that fail to parse are ignored: they were never valid.
func (a *Authenticator) Revoke(token string) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ExpiresAt == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[token] = claims.ExpiresAt.Time
	a.pruneLocked()
}

func (a *Authenticator) pruneLocked() {
	now := time.Now()
	for token, expiry := range a.revoked {
		if expiry.Before(now) {
			delete(a.revoked, token)
		}
	}
}
