package jwtmw

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"event_backend/internal/shared/identity"
)

// ErrInvalidToken is returned by Verify for any token that must not be trusted:
// bad signature, unexpected algorithm, malformed structure, missing claims or
// an expired token.
var ErrInvalidToken = errors.New("invalid token")

// signingMethod is the only algorithm tokens are issued with and accepted in.
var signingMethod = jwt.SigningMethodHS512

// Claims is the payload carried by an identity token.
// The subject holds the user's email address.
type Claims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS512-signed identity tokens.
// It holds no mutable state and is safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager signing with secret. ttl is the lifetime used
// by IssueFor.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of m that reads the current time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

// Issue signs a token for the given user that expires ttl after issuedAt.
func (m *Manager) Issue(email string, userID uint, role identity.Role, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueFor signs a token issued now with the manager's configured lifetime.
func (m *Manager) IssueFor(email string, userID uint, role identity.Role) (string, error) {
	return m.Issue(email, userID, role, m.now(), m.ttl)
}

// Verify checks the token and returns the identity it carries.
func (m *Manager) Verify(tokenStr string) (identity.Identity, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return identity.Anonymous, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return identity.Anonymous, ErrInvalidToken
	}

	// exp has second precision; treat the expiry instant itself as expired.
	if !m.now().Before(claims.ExpiresAt.Time) {
		return identity.Anonymous, ErrInvalidToken
	}

	role, ok := identity.ParseRole(claims.Role)
	if !ok || claims.UserID == 0 || claims.Subject == "" {
		return identity.Anonymous, ErrInvalidToken
	}

	return identity.Identity{
		UserID: claims.UserID,
		Email:  claims.Subject,
		Role:   role,
	}, nil
}

// ExtractUserID returns the user id carried by a valid token.
func (m *Manager) ExtractUserID(tokenStr string) (uint, bool) {
	id, err := m.Verify(tokenStr)
	if err != nil {
		return 0, false
	}
	return id.UserID, true
}

// ExtractRole returns the role carried by a valid token.
func (m *Manager) ExtractRole(tokenStr string) (identity.Role, bool) {
	id, err := m.Verify(tokenStr)
	if err != nil {
		return "", false
	}
	return id.Role, true
}
