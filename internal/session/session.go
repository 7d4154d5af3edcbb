package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nikolayk812/shopcart/internal/port"
)

const DefaultTTL = 30 * 24 * time.Hour

type LoginMethod string

const (
	LoginCredentials LoginMethod = "credentials"
	LoginGoogle      LoginMethod = "google"
)

var ErrInvalidToken = errors.New("session token is invalid")

// Session is the signed-in user as the cart routes see it.
type Session struct {
	UserID      string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        string      `json:"role"`
	Token       string      `json:"token"`
	LoginMethod LoginMethod `json:"loginMethod"`
	ExpiresAt   time.Time   `json:"expires"`
}

type claims struct {
	jwt.RegisteredClaims

	Email       string      `json:"email,omitempty"`
	Name        string      `json:"name,omitempty"`
	Role        string      `json:"role,omitempty"`
	Token       string      `json:"token,omitempty"`
	LoginMethod LoginMethod `json:"loginMethod"`
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

func NewManager(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}

	m := &Manager{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Issue signs a session for a user the backend has authenticated.
func (m *Manager) Issue(user port.BackendUser, method LoginMethod) (string, Session, error) {
	if user.ID == "" {
		return "", Session{}, fmt.Errorf("user.ID is empty")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Token:       user.Token,
		LoginMethod: method,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("token.SignedString: %w", err)
	}

	return signed, c.toSession(), nil
}

func (m *Manager) Parse(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidToken
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("%w: subject is empty", ErrInvalidToken)
	}

	return c.toSession(), nil
}

func (c claims) toSession() Session {
	s := Session{
		UserID:      c.Subject,
		Email:       c.Email,
		Name:        c.Name,
		Role:        c.Role,
		Token:       c.Token,
		LoginMethod: c.LoginMethod,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// Subject reads the user id from a token without verifying it. Clients use it
// to label requests; only Parse may be trusted for authorization.
func Subject(token string) (string, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: subject is empty", ErrInvalidToken)
	}
	return c.Subject, nil
}
