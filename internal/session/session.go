// Package session carries the caller's bearer token and identity explicitly
// through every collaborator instead of reading it from a global store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"officedesk/internal/models"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpired      = errors.New("session expired")
)

// Session is an authenticated caller of the office API. Verified is set only
// when the token signature was checked locally.
type Session struct {
	Token     string      `json:"-"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name,omitempty"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at,omitempty"`
	Verified  bool        `json:"verified"`
}

// Expired reports whether the session is no longer usable at now.
// Sessions without an expiry never expire.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthorizationHeader returns the header value to forward upstream.
func (s Session) AuthorizationHeader() string {
	return "Bearer " + s.Token
}

// Parser builds sessions from bearer tokens. With a secret the HS256
// signature is verified; without one claims are read as-is and the upstream
// API stays the authority on signatures.
type Parser struct {
	secret []byte
}

// NewParser returns a Parser. An empty secret disables signature checks.
func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// FromHeader extracts the bearer token from an Authorization header value.
func (p *Parser) FromHeader(header string, now time.Time) (Session, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return Session{}, ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return Session{}, ErrMissingToken
	}
	return p.Parse(token, now)
}

// Parse validates token claims and checks expiry against now.
func (p *Parser) Parse(token string, now time.Time) (Session, error) {
	claims := jwt.MapClaims{}

	var err error
	if len(p.secret) > 0 {
		keyFunc := func(*jwt.Token) (any, error) { return p.secret, nil }
		_, err = jwt.ParseWithClaims(token, claims, keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(func() time.Time { return now }),
		)
	} else {
		_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Session{}, ErrExpired
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sess := Session{
		Token:    token,
		UserID:   claimString(claims, "user_id"),
		Name:     claimString(claims, "name"),
		Role:     models.ParseRole(claimString(claims, "role")),
		Verified: len(p.secret) > 0,
	}
	if sess.UserID == "" {
		sess.UserID = claimString(claims, "sub")
	}
	if sess.UserID == "" {
		return Session{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	if sess.Expired(now) {
		return Session{}, ErrExpired
	}
	return sess, nil
}

// claimString reads a string or numeric claim as a string.
func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

type ctxKey struct{}

// WithSession stores sess on ctx.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(Session)
	return sess, ok
}

// Issue signs a session into an HS256 token. The service uses it for its own
// sync session and tests use it to mint caller tokens.
func Issue(secret []byte, sess Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sess.UserID,
		"name": sess.Name,
		"role": string(sess.Role),
	}
	if !sess.ExpiresAt.IsZero() {
		claims["exp"] = sess.ExpiresAt.Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
