package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer   = "docchat-api"
	defaultAudience = "docchat-client"
	defaultTTL      = 24 * time.Hour
	defaultLeeway   = 30 * time.Second
)

var ErrInvalidToken = errors.New("invalid session token")

// Sessions issues and verifies HS256 session tokens carrying the user ID
// as subject.
type Sessions struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	leeway   time.Duration
}

// NewSessions builds a session manager. ttl <= 0 selects the default.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Sessions{
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   defaultIssuer,
		audience: defaultAudience,
		leeway:   defaultLeeway,
	}, nil
}

// Issue signs a token for the user ID.
func (s *Sessions) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifySubject validates the token and returns the subject user ID.
func (s *Sessions) VerifySubject(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
